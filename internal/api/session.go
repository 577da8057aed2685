package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/scbrown/mbx/internal/model"
)

// Login exchanges a username and password for a session id via POST /session.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	raw, err := c.doRaw(ctx, http.MethodPost, "/session", nil, body, false)
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("login response carried no session id")
	}
	return resp.ID, nil
}

// Logout invalidates the current session via DELETE /session. A 401 means the
// session was already dead and is not an error.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/session", nil, nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil
		}
		return err
	}
	return nil
}

// SessionProperties fetches /session/properties, which doubles as a session
// validity check.
func (c *Client) SessionProperties(ctx context.Context) (*model.SessionProperties, error) {
	var props model.SessionProperties
	if err := c.do(ctx, http.MethodGet, "/session/properties", nil, nil, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// CurrentUser fetches the authenticated user via /user/current.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/user/current", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
