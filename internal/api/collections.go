package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/scbrown/mbx/internal/hierarchy"
	"github.com/scbrown/mbx/internal/model"
)

// CollectionTree fetches /collection/tree: the full hierarchy as nested
// collections, one entry per top-level collection.
func (c *Client) CollectionTree(ctx context.Context, excludeArchived bool) ([]model.Collection, error) {
	q := url.Values{}
	if excludeArchived {
		q.Set("exclude-archived", "true")
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/collection/tree", q, nil, true)
	if err != nil {
		return nil, err
	}
	var cols []model.Collection
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return cols, nil
}

// FetchHierarchy fetches the collection tree and flattens it into the
// parent-pointer registry the hierarchy package consumes. Backend root
// conventions (a "root" pseudo-collection, nesting under no parent) are
// mapped onto hierarchy.RootID here, before the core ever sees the data.
func (c *Client) FetchHierarchy(ctx context.Context, includeArchived bool) ([]hierarchy.Node, error) {
	cols, err := c.CollectionTree(ctx, !includeArchived)
	if err != nil {
		return nil, err
	}
	return FlattenTree(cols)
}

// FlattenTree converts the nested tree response into a flat node list. A
// non-numeric id is legal only for the "root" pseudo-collection, whose
// children are treated as top-level.
func FlattenTree(cols []model.Collection) ([]hierarchy.Node, error) {
	var nodes []hierarchy.Node
	var walk func(col model.Collection, parent int) error
	walk = func(col model.Collection, parent int) error {
		id, ok := col.NumericID()
		if !ok {
			if !isRootToken(col.ID) {
				return fmt.Errorf("collection %q has non-numeric id %s", col.Name, col.ID)
			}
			// The root pseudo-collection is the sentinel itself; hoist
			// its children to the top level.
			for _, child := range col.Children {
				if err := walk(child, hierarchy.RootID); err != nil {
					return err
				}
			}
			return nil
		}
		nodes = append(nodes, hierarchy.Node{
			ID:       id,
			Name:     col.Name,
			ParentID: parent,
			Archived: col.Archived,
		})
		for _, child := range col.Children {
			if err := walk(child, id); err != nil {
				return err
			}
		}
		return nil
	}
	for _, col := range cols {
		if err := walk(col, hierarchy.RootID); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

func isRootToken(raw json.RawMessage) bool {
	return strings.Trim(string(raw), `"`) == "root"
}

// GetCollection fetches one collection by id; id may be the literal "root".
func (c *Client) GetCollection(ctx context.Context, id string) (*model.Collection, error) {
	var col model.Collection
	if err := c.do(ctx, http.MethodGet, "/collection/"+url.PathEscape(id), nil, nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// ItemsOpts filters a collection items listing.
type ItemsOpts struct {
	Models   []string // card, dashboard, collection, dataset, pulse
	Archived bool
	SortBy   string // name, last_edited_at, last_edited_by, model
	SortDir  string // asc, desc
}

// CollectionItems lists the contents of a collection via /collection/:id/items.
func (c *Client) CollectionItems(ctx context.Context, id string, opts ItemsOpts) ([]model.CollectionItem, error) {
	q := url.Values{}
	for _, m := range opts.Models {
		q.Add("models", m)
	}
	if opts.Archived {
		q.Set("archived", "true")
	}
	if opts.SortBy != "" {
		q.Set("sort_column", opts.SortBy)
	}
	if opts.SortDir != "" {
		q.Set("sort_direction", opts.SortDir)
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/collection/"+url.PathEscape(id)+"/items", q, nil, true)
	if err != nil {
		return nil, err
	}
	return listOrData[model.CollectionItem](raw)
}

// CreateCollection creates a collection via POST /collection.
func (c *Client) CreateCollection(ctx context.Context, name, description string, parentID *int) (*model.Collection, error) {
	body := map[string]any{"name": name}
	if description != "" {
		body["description"] = description
	}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var col model.Collection
	if err := c.do(ctx, http.MethodPost, "/collection", nil, body, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// UpdateCollection updates name, description, or parent of a collection.
// nil/empty fields are left untouched server-side.
func (c *Client) UpdateCollection(ctx context.Context, id int, name, description string, parentID *int) (*model.Collection, error) {
	body := map[string]any{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var col model.Collection
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collection/%d", id), nil, body, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// ArchiveCollection soft-deletes a collection.
func (c *Client) ArchiveCollection(ctx context.Context, id int) (*model.Collection, error) {
	var col model.Collection
	body := map[string]any{"archived": true}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collection/%d", id), nil, body, &col); err != nil {
		return nil, err
	}
	return &col, nil
}
