package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the shopping list API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON decodes the body into v.
func (r Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %d response: %w", r.Status, err)
	}
	return nil
}

// IsJSON reports whether the response declared a JSON body.
func (r Response) IsJSON() bool {
	return strings.HasPrefix(r.ContentType, "application/json")
}

// Do sends a request with an optional raw body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: data}, nil
}

// DoJSON marshals v as the request body.
func (c *Client) DoJSON(ctx context.Context, method, path string, v any) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.Do(ctx, method, path, data)
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.Status)
	}
	return nil
}

// List calls GET /items.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("list items: status %d", resp.Status)
	}
	var items []Item
	return items, resp.JSON(&items)
}

// Create calls POST /items.
func (c *Client) Create(ctx context.Context, name string) (Item, error) {
	resp, err := c.DoJSON(ctx, http.MethodPost, "/items", map[string]string{"name": name})
	if err != nil {
		return Item{}, err
	}
	if resp.Status != http.StatusCreated {
		return Item{}, fmt.Errorf("create %q: status %d", name, resp.Status)
	}
	var item Item
	return item, resp.JSON(&item)
}

// Delete calls DELETE /items/{id}.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.Do(ctx, http.MethodDelete, "/items/"+id, nil)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("delete %s: status %d", id, resp.Status)
	}
	return nil
}
