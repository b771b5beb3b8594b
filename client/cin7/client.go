// Package cin7 is the ERP (target system) client.
package cin7

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
	"time"

	"plmsync.GO/client/transport"
	"plmsync.GO/core/retry"
	"plmsync.GO/core/syncerr"
)

const DefaultBaseURL = "https://api.cin7.com/api/v1"

type Client struct {
	baseURL    string
	apiUser    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
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

func NewClient(apiUser, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiUser:    apiUser,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify makes a one-row listing call to prove the credentials work.
func (c *Client) Verify(ctx context.Context) error {
	q := url.Values{}
	q.Set("rows", "1")
	_, err := c.call(ctx, http.MethodGet, "/Products", q, nil)
	return err
}

// FindBySKU returns nil, nil when no product carries the code.
func (c *Client) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	q := url.Values{}
	q.Set("where", fmt.Sprintf("code='%s'", strings.ReplaceAll(sku, "'", "''")))
	q.Set("rows", "1")
	raw, err := c.call(ctx, http.MethodGet, "/Products", q, nil)
	if errors.Is(err, syncerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range products {
		if products[i].SKU == sku {
			return &products[i], nil
		}
	}
	return nil, nil
}

// UpsertProduct creates or updates by SKU. An existing product's ID is
// attached so the write is routed as an update, never a duplicate create.
// API rejections come back as a Result with StatusError; err is reserved
// for authentication and transport failures.
func (c *Client) UpsertProduct(ctx context.Context, p Product) (Result, error) {
	existing, err := c.FindBySKU(ctx, p.SKU)
	if err != nil {
		return Result{}, err
	}
	method := http.MethodPost
	if existing != nil {
		p.ID = existing.ID
		method = http.MethodPut
	}
	raw, err := c.call(ctx, method, "/Products", nil, []Product{p})
	if errors.Is(err, syncerr.ErrValidation) {
		return Result{Status: StatusError, Message: err.Error()}, nil
	}
	if err != nil {
		return Result{}, err
	}
	row, err := parseBatch(raw)
	if err != nil {
		return Result{}, err
	}
	if !row.Success {
		return Result{Status: StatusError, Message: strings.Join(row.Errors, "; ")}, nil
	}
	if row.ID != "" {
		p.ID = row.ID
	}
	if method == http.MethodPut {
		log.Printf("[cin7] updated product %s (%s)", p.SKU, p.ID)
	} else {
		log.Printf("[cin7] created product %s (%s)", p.SKU, p.ID)
	}
	return Result{Status: StatusSuccess, Data: &p}, nil
}

// UploadBOM replaces the component list of an assembly.
func (c *Client) UploadBOM(ctx context.Context, productID ProductID, lines []BOMLine) (Result, error) {
	raw, err := c.call(ctx, http.MethodPut, "/BillOfMaterials", nil, []BOMUpload{{ProductID: productID, Components: lines}})
	if errors.Is(err, syncerr.ErrValidation) {
		return Result{Status: StatusError, Message: err.Error()}, nil
	}
	if err != nil {
		return Result{}, err
	}
	row, err := parseBatch(raw)
	if err != nil {
		return Result{}, err
	}
	if !row.Success {
		return Result{Status: StatusError, Message: strings.Join(row.Errors, "; ")}, nil
	}
	return Result{Status: StatusSuccess, Data: &Product{ID: productID}}, nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var out []byte
	err := retry.Do(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.apiUser, c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return transport.Wrap(method, path, err)
		}
		raw, err := transport.ReadBody(resp)
		if err != nil {
			return transport.Wrap(method, path, err)
		}
		if err := transport.Check(method, path, resp, raw); err != nil {
			return err
		}
		out = raw
		return nil
	})
	return out, err
}
