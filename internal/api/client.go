// Package api is the HTTP client for the Metabase REST API. Every method maps
// one endpoint: build the request, attach auth headers, decode the JSON
// response, translate error statuses into the package's error taxonomy.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scbrown/mbx/internal/config"
)

// ErrNotFound reports a 404 from the server.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized reports a 401/403 from the server.
var ErrUnauthorized = errors.New("authentication failed")

// APIError is a non-2xx response from the server, carrying the message the
// server put in the response body when there was one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto the package sentinels so callers can
// use errors.Is without looking at status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Options configures a Client beyond the connection profile.
type Options struct {
	// Logger receives one debug event per request.
	Logger zerolog.Logger
	// ConfigPath and ProfileName, when set, let the client persist a
	// refreshed session id after a transparent credentials re-login.
	ConfigPath  string
	ProfileName string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to one Metabase instance.
type Client struct {
	baseURL     string
	http        *http.Client
	profile     *config.Profile
	log         zerolog.Logger
	configPath  string
	profileName string
	requests    atomic.Int64
}

// New creates a Client for the given profile.
func New(p *config.Profile, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(p.URL, "/") + "/api",
		http:        hc,
		profile:     p,
		log:         opts.Logger,
		configPath:  opts.ConfigPath,
		profileName: opts.ProfileName,
	}
}

// RequestCount returns the number of API requests made so far.
func (c *Client) RequestCount() int64 {
	return c.requests.Load()
}

// BaseURL returns the instance URL without the /api suffix.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

// AuthMethod returns the auth method the client authenticates with.
func (c *Client) AuthMethod() string {
	return c.profile.AuthMethod
}

func (c *Client) authHeader() (key, value string, err error) {
	switch c.profile.AuthMethod {
	case config.MethodAPIKey:
		if c.profile.APIKey == "" {
			return "", "", fmt.Errorf("api key not configured: %w", ErrUnauthorized)
		}
		return "x-api-key", c.profile.APIKey, nil
	case config.MethodSession, config.MethodCredentials:
		if c.profile.SessionID == "" {
			return "", "", fmt.Errorf("no session id available: %w", ErrUnauthorized)
		}
		return "x-metabase-session", c.profile.SessionID, nil
	}
	return "", "", fmt.Errorf("unknown auth method %q: %w", c.profile.AuthMethod, ErrUnauthorized)
}

// do runs one request against the API. A 401 under credentials auth triggers
// a single re-login and retry, persisting the fresh session id when the
// client knows where the profile lives.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	raw, err := c.doRaw(ctx, method, path, query, body, true)
	if err != nil {
		return err
	}
	if dst == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any, canRefresh bool) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Session creation is the one unauthenticated endpoint.
	if !(method == http.MethodPost && path == "/session") {
		key, value, err := c.authHeader()
		if err != nil {
			return nil, err
		}
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.requests.Add(1)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode == http.StatusUnauthorized &&
		canRefresh &&
		c.profile.AuthMethod == config.MethodCredentials {
		io.Copy(io.Discard, resp.Body)
		if err := c.refreshSession(ctx); err != nil {
			return nil, err
		}
		return c.doRaw(ctx, method, path, query, body, false)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}
	return data, nil
}

// refreshSession re-authenticates with the stored username and password and
// persists the new session id when a config path is known.
func (c *Client) refreshSession(ctx context.Context) error {
	c.log.Debug().Str("profile", c.profileName).Msg("session expired, re-authenticating")
	sessionID, err := c.Login(ctx, c.profile.Username, c.profile.Password)
	if err != nil {
		return fmt.Errorf("session refresh: %w", err)
	}
	c.profile.SessionID = sessionID
	if c.configPath != "" {
		if err := config.UpdateSessionID(c.configPath, c.profileName, sessionID); err != nil {
			c.log.Warn().Err(err).Msg("could not persist refreshed session id")
		}
	}
	return nil
}

// serverMessage pulls a human-readable message out of an error response body.
// Metabase errors carry either {"message": ...} or {"errors": {...}}.
func serverMessage(data []byte) string {
	var body struct {
		Message string                     `json:"message"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Errors) > 0 {
		parts := make([]string, 0, len(body.Errors))
		for field, msg := range body.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", field, bytes.Trim(msg, `"`)))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// listOrData decodes endpoints that return either a bare JSON array or a
// {"data": [...]} envelope, depending on server version.
func listOrData[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return out, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return envelope.Data, nil
}
