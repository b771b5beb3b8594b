// Package arena is the PLM (source system) client.
package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"plmsync.GO/client/transport"
	"plmsync.GO/core/retry"
	"plmsync.GO/core/syncerr"
)

const (
	DefaultBaseURL  = "https://api.arena.com/v1"
	DefaultPageSize = 400
	sessionHeader   = "arena_session_id"
)

type Client struct {
	baseURL     string
	workspaceID string
	email       string
	password    string
	pageSize    int
	httpClient  *http.Client
	policy      retry.Policy

	mu        sync.Mutex
	sessionID string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func WithRetry(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func NewClient(workspaceID, email, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		workspaceID: workspaceID,
		email:       email,
		password:    password,
		pageSize:    DefaultPageSize,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		policy:      retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate logs in and stores the session id for later calls.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]string{
		"workspaceId": c.workspaceID,
		"email":       c.email,
		"password":    c.password,
	}
	var out map[string]interface{}
	err := retry.Do(ctx, c.policy, func() error {
		var err error
		out, err = c.send(ctx, http.MethodPost, "/login", nil, body, "")
		return err
	})
	if err != nil {
		if errors.Is(err, syncerr.ErrValidation) {
			// A rejected login body is a credentials problem.
			return fmt.Errorf("arena login: %w: %v", syncerr.ErrAuthentication, err)
		}
		return err
	}
	session, _ := out["sessionId"].(string)
	if session == "" {
		return fmt.Errorf("arena login: %w: no session id returned", syncerr.ErrAuthentication)
	}
	c.mu.Lock()
	c.sessionID = session
	c.mu.Unlock()
	log.Printf("[arena] login to workspace %s successful", c.workspaceID)
	return nil
}

func (c *Client) session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// get performs an authenticated GET, logging in first if needed and once
// more if the session has expired.
func (c *Client) get(ctx context.Context, path string, query url.Values) (map[string]interface{}, error) {
	if c.session() == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}
	var out map[string]interface{}
	call := func() error {
		var err error
		out, err = c.send(ctx, http.MethodGet, path, query, nil, c.session())
		return err
	}
	err := retry.Do(ctx, c.policy, call)
	if errors.Is(err, syncerr.ErrAuthentication) {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		err = retry.Do(ctx, c.policy, call)
	}
	return out, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}, session string) (map[string]interface{}, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transport.Wrap(method, path, err)
	}
	raw, err := transport.ReadBody(resp)
	if err != nil {
		return nil, transport.Wrap(method, path, err)
	}
	if err := transport.Check(method, path, resp, raw); err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return out, nil
}
