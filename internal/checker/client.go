package checker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// RecommendationPayload is the body of POST /recommendations and POST /favorites/update.
// UserID is omitted when empty so the missing-user_id case can be sent.
type RecommendationPayload struct {
	UserID     string   `json:"user_id,omitempty"`
	Favorites  []string `json:"favorites"`
	Categories []string `json:"categories"`
	Limit      int      `json:"limit,omitempty"`
}

// Response is a raw exchange; assertions run against Body.
type Response struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

// Client issues one request at a time against the service under test.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GET /
func (c *Client) Info(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/", nil)
}

// POST /recommendations
func (c *Client) Recommend(ctx context.Context, payload RecommendationPayload) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/recommendations", normalizePayload(payload))
}

// POST /favorites/update
func (c *Client) UpdateFavorites(ctx context.Context, payload RecommendationPayload) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/favorites/update", normalizePayload(payload))
}

// GET /category/{name}
func (c *Client) Category(ctx context.Context, name string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/category/"+url.PathEscape(name), nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*Response, error) {
	endpoint := method + " " + path

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", endpoint, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	return &Response{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: raw}, nil
}

// nil slices would encode as null; the contract sends arrays.
func normalizePayload(p RecommendationPayload) RecommendationPayload {
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return p
}
