package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/scbrown/mbx/internal/model"
)

// ListDashboards lists dashboards, optionally limited to one collection. The
// dedicated listing endpoint is deprecated server-side, so this rides the
// search API with a model filter, as the web app does.
func (c *Client) ListDashboards(ctx context.Context, collectionID *int) ([]model.SearchResult, error) {
	q := url.Values{}
	q.Set("models", "dashboard")
	if collectionID != nil {
		q.Set("collection_id", strconv.Itoa(*collectionID))
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/search", q, nil, true)
	if err != nil {
		return nil, err
	}
	return listOrData[model.SearchResult](raw)
}

// GetDashboard fetches one dashboard with all dashcard definitions. The raw
// payload is returned alongside the decoded form for export.
func (c *Client) GetDashboard(ctx context.Context, id int) (*model.Dashboard, json.RawMessage, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/dashboard/%d", id), nil, nil, true)
	if err != nil {
		return nil, nil, err
	}
	var dash model.Dashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	return &dash, raw, nil
}

// CreateDashboard creates a dashboard from a full definition (import flow).
func (c *Client) CreateDashboard(ctx context.Context, definition json.RawMessage) (*model.Dashboard, error) {
	var dash model.Dashboard
	if err := c.do(ctx, http.MethodPost, "/dashboard", nil, definition, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// UpdateDashboard applies a partial definition to an existing dashboard.
func (c *Client) UpdateDashboard(ctx context.Context, id int, definition json.RawMessage) (*model.Dashboard, error) {
	var dash model.Dashboard
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/dashboard/%d", id), nil, definition, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// ArchiveDashboard soft-deletes a dashboard.
func (c *Client) ArchiveDashboard(ctx context.Context, id int) (*model.Dashboard, error) {
	var dash model.Dashboard
	body := map[string]any{"archived": true}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/dashboard/%d", id), nil, body, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// DeleteDashboard permanently deletes a dashboard.
func (c *Client) DeleteDashboard(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/dashboard/%d", id), nil, nil, nil)
}

// DashboardRevisions lists a dashboard's revision history.
func (c *Client) DashboardRevisions(ctx context.Context, id int) ([]model.Revision, error) {
	var revs []model.Revision
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dashboard/%d/revisions", id), nil, nil, &revs); err != nil {
		return nil, err
	}
	return revs, nil
}

// RevertDashboard restores a dashboard to a previous revision.
func (c *Client) RevertDashboard(ctx context.Context, id, revisionID int) (*model.Dashboard, error) {
	var dash model.Dashboard
	body := map[string]any{"revision_id": revisionID}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/dashboard/%d/revert", id), nil, body, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
