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

// CardListOpts filters the card listing.
type CardListOpts struct {
	Filter       string // all, mine, bookmarked, archived, database, table, using_model
	CollectionID *int
	DatabaseID   *int
}

// ListCards lists saved questions via GET /card.
func (c *Client) ListCards(ctx context.Context, opts CardListOpts) ([]model.Card, error) {
	q := url.Values{}
	if opts.Filter != "" {
		q.Set("f", opts.Filter)
	}
	if opts.CollectionID != nil {
		q.Set("collection_id", strconv.Itoa(*opts.CollectionID))
	}
	if opts.DatabaseID != nil {
		q.Set("database_id", strconv.Itoa(*opts.DatabaseID))
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/card", q, nil, true)
	if err != nil {
		return nil, err
	}
	return listOrData[model.Card](raw)
}

// GetCard fetches one card with its full query definition.
func (c *Client) GetCard(ctx context.Context, id int) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/card/%d", id), nil, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// RunCard executes a card's query via POST /card/:id/query. The raw response
// is returned alongside the decoded result so exports can write the server
// payload untouched.
func (c *Client) RunCard(ctx context.Context, id int, parameters json.RawMessage, limit int) (*model.QueryResult, json.RawMessage, error) {
	body := map[string]any{}
	if len(parameters) > 0 {
		body["parameters"] = parameters
	}
	if limit > 0 {
		body["limit"] = limit
	}
	raw, err := c.doRaw(ctx, http.MethodPost, fmt.Sprintf("/card/%d/query", id), nil, body, true)
	if err != nil {
		return nil, nil, err
	}
	var result model.QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, raw, nil
}

// CreateCard creates a card from a full definition (import flow), which must
// contain at least name, dataset_query, and display.
func (c *Client) CreateCard(ctx context.Context, definition json.RawMessage) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodPost, "/card", nil, definition, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard applies a partial definition to an existing card.
func (c *Client) UpdateCard(ctx context.Context, id int, definition json.RawMessage) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/card/%d", id), nil, definition, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// ArchiveCard soft-deletes a card.
func (c *Client) ArchiveCard(ctx context.Context, id int) (*model.Card, error) {
	var card model.Card
	body := map[string]any{"archived": true}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/card/%d", id), nil, body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard permanently deletes a card.
func (c *Client) DeleteCard(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/card/%d", id), nil, nil, nil)
}
