// Package products is the HTTP shim over the external product-management
// API. It performs plain request/response calls: no retries, no pagination.
// Remote failures come back as *APIError values whose messages are safe to
// show to the completion provider (and, through it, the user).
package products

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Product mirrors the remote resource representation.
type Product struct {
	ProductID          json.Number `json:"productId,omitempty"`
	ProductName        string      `json:"productName,omitempty"`
	ProductDescription string      `json:"productDescription,omitempty"`
	ProductType        string      `json:"productType,omitempty"`
	InternalSkuCode    string      `json:"internalSkuCode,omitempty"`
	Version            string      `json:"version,omitempty"`
	Status             string      `json:"status,omitempty"`
	CreatedOn          string      `json:"createdOn,omitempty"`
	LastUpdated        string      `json:"lastUpdated,omitempty"`
}

// APIError reports a non-2xx response from the product API.
type APIError struct {
	StatusCode int
	ProductID  string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 && e.ProductID != "" {
		return fmt.Sprintf("the product API returned status %d for product %s; the product may not exist", e.StatusCode, e.ProductID)
	}
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return fmt.Sprintf("the product API rejected the request with status %d", e.StatusCode)
	}
	return fmt.Sprintf("the product API returned status %d", e.StatusCode)
}

// Client calls the product API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Get retrieves one product by id.
func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// List retrieves all products.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var list []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Create adds a new product from the given fields.
func (c *Client) Create(ctx context.Context, fields map[string]any) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/api/products", "", fields, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Replace overwrites the full resource (PUT).
func (c *Client) Replace(ctx context.Context, id string, fields map[string]any) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+id, id, fields, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update applies a partial update (PATCH).
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPatch, "/api/products/"+id, id, fields, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+id, id, nil, nil)
}

// Finalize marks a product as finalized.
func (c *Client) Finalize(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/products/"+id+"/finalize", id, nil, nil)
}

// DeleteIcon removes the product's icon.
func (c *Client) DeleteIcon(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+id+"/icon", id, nil, nil)
}

// UpdateIcon patches the product's icon fields.
func (c *Client) UpdateIcon(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/api/products/"+id+"/icon", id, fields, nil)
}

func (c *Client) do(ctx context.Context, method, path, productID string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Str("method", method).Str("path", path).Err(err).Msg("product API request failed")
		return fmt.Errorf("reaching the product API failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("product API call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, ProductID: productID, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode product API response: %w", err)
	}
	return nil
}
