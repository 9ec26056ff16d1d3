// Package client talks to the quote API. It performs no retry and no
// caching: every call is one HTTP request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tarificateur/go_backend/internal/domain/quote"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return e.Message
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) List(ctx context.Context) ([]quote.Quote, error) {
	var out []quote.Quote
	if err := c.do(ctx, http.MethodGet, "/api/devis", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (quote.Quote, error) {
	var out quote.Quote
	err := c.do(ctx, http.MethodGet, "/api/devis/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// Create sends a new quote and returns the id the API assigned.
func (c *Client) Create(ctx context.Context, q quote.Quote) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/devis", q, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) Update(ctx context.Context, id int64, q quote.Quote) error {
	return c.do(ctx, http.MethodPatch, "/api/devis/"+strconv.FormatInt(id, 10), q, nil)
}

func (c *Client) DocxURL(id int64) string {
	return fmt.Sprintf("%s/api/devis/%d/docx", c.BaseURL, id)
}

func (c *Client) PdfURL(id int64) string {
	return fmt.Sprintf("%s/api/devis/%d/pdf", c.BaseURL, id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
