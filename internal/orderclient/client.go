package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FieldError is the conventional field-level validation error shape returned
// by the order service.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// APIError carries a decoded error response from a collaborator.
type APIError struct {
	StatusCode int
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order service returned %d: %s", e.StatusCode, e.UserMessage())
}

// UserMessage consolidates the response into a single human-readable
// message: field errors first, then the validation message, then a generic
// fallback.
func (e *APIError) UserMessage() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			if fe.Msg != "" {
				msgs = append(msgs, fe.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return "order could not be placed, please try again"
}

// Client talks to the order service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the order service at baseURL. The HTTP
// client carries no timeout of its own; callers bound each call through ctx.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// CreateDraft upserts an abandoned-cart draft. Only an acknowledgement is
// expected back.
func (c *Client) CreateDraft(ctx context.Context, draft DraftPayload) error {
	var ack struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, "/api/orders/draft", draft, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("draft not acknowledged")
	}
	return nil
}

// Create submits a finalized order and returns the server-assigned order.
func (c *Client) Create(ctx context.Context, payload OrderPayload) (*CreatedOrder, error) {
	var resp struct {
		Success bool         `json:"success"`
		Order   CreatedOrder `json:"order"`
	}
	if err := c.postJSON(ctx, "/api/orders", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Order.OrderNumber == "" {
		return nil, fmt.Errorf("order service accepted the request but returned no order number")
	}
	return &resp.Order, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// best effort: an undecodable body falls through to the
		// generic message
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Catalog talks to the product catalog.
type Catalog struct {
	baseURL string
	http    *http.Client
}

// NewCatalog returns a Catalog client. Catalog reads carry a fixed timeout;
// a stuck catalog must not hang the add-to-cart flow.
func NewCatalog(baseURL string) *Catalog {
	return &Catalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// List fetches products matching the given filter params.
func (c *Catalog) List(ctx context.Context, filter url.Values) ([]Product, error) {
	u := c.baseURL + "/api/products"
	if len(filter) > 0 {
		u += "?" + filter.Encode()
	}
	var products []Product
	if err := c.getJSON(ctx, u, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches one product by id.
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.getJSON(ctx, c.baseURL+"/api/products/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Catalog) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
