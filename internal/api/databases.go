package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/scbrown/mbx/internal/model"
)

// ListDatabases lists the databases the user can see.
func (c *Client) ListDatabases(ctx context.Context, includeTables bool) ([]model.Database, error) {
	q := url.Values{}
	if includeTables {
		q.Set("include", "tables")
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/database", q, nil, true)
	if err != nil {
		return nil, err
	}
	return listOrData[model.Database](raw)
}

// GetDatabase fetches one database. includeFields implies includeTables.
func (c *Client) GetDatabase(ctx context.Context, id int, includeTables, includeFields bool) (*model.Database, error) {
	q := url.Values{}
	if includeFields {
		q.Set("include", "tables.fields")
	} else if includeTables {
		q.Set("include", "tables")
	}
	var db model.Database
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/database/%d", id), q, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// DatabaseMetadata fetches the complete table and field metadata of a
// database.
func (c *Client) DatabaseMetadata(ctx context.Context, id int, includeHidden bool) (*model.Database, error) {
	q := url.Values{}
	if includeHidden {
		q.Set("include_hidden", "true")
	}
	var db model.Database
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/database/%d/metadata", id), q, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// DatabaseSchemas lists the schema names of a database.
func (c *Client) DatabaseSchemas(ctx context.Context, id int) ([]string, error) {
	var schemas []string
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/database/%d/schemas", id), nil, nil, &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

// SyncDatabaseSchema triggers a schema sync.
func (c *Client) SyncDatabaseSchema(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/database/%d/sync_schema", id), nil, nil, nil)
}
