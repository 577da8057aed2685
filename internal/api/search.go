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

// SearchOpts parameterizes a global search.
type SearchOpts struct {
	Query        string
	Models       []string
	CollectionID *int
	DatabaseID   *int
	Archived     bool
	CreatedBy    *int
	Limit        int
}

// Search runs a global search across all entity types via GET /search.
func (c *Client) Search(ctx context.Context, opts SearchOpts) (*model.SearchResponse, error) {
	q := url.Values{}
	q.Set("q", opts.Query)
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	for _, m := range opts.Models {
		q.Add("models", m)
	}
	if opts.CollectionID != nil {
		q.Set("collection_id", strconv.Itoa(*opts.CollectionID))
	}
	if opts.DatabaseID != nil {
		q.Set("table_db_id", strconv.Itoa(*opts.DatabaseID))
	}
	if opts.Archived {
		q.Set("archived", "true")
	}
	if opts.CreatedBy != nil {
		q.Set("created_by", strconv.Itoa(*opts.CreatedBy))
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/search", q, nil, true)
	if err != nil {
		return nil, err
	}
	var resp model.SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Total == 0 {
		resp.Total = len(resp.Data)
	}
	return &resp, nil
}
