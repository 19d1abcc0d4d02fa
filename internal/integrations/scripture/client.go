package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.scripture.api.bible"
	DefaultBibleID = "de4e12af7f28f599-02"

	// demoKey is sent when no API key is configured; the lookup is best effort.
	demoKey = "demo-key"
)

// ErrNotFound is returned when a well-formed search response has no passage.
var ErrNotFound error = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string  { return "scripture: passage not found" }
func (notFoundError) NotFound() bool { return true }

// searchResponse is the subset of the search response the lookup reads.
type searchResponse struct {
	Data *struct {
		Query    string    `json:"query"`
		Passages []passage `json:"passages"`
	} `json:"data"`
}

type passage struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Content   string `json:"content"`
}

// HTTPStatusError captures non-2xx search responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("scripture: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// ParseError reports a response body that does not match the search schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scripture: parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) MalformedResponse() bool { return true }

// Client looks up passage text by reference.
type Client struct {
	baseURL    string
	bibleID    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if b := strings.TrimSpace(baseURL); b != "" {
			c.baseURL = b
		}
	}
}

func WithBibleID(id string) Option {
	return func(c *Client) {
		if id = strings.TrimSpace(id); id != "" {
			c.bibleID = id
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		bibleID:    DefaultBibleID,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func searchURL(baseURL, bibleID, reference string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/bibles/" + url.PathEscape(bibleID) + "/search?query=" + url.QueryEscape(reference)
}

// Lookup returns the content of the first passage matching reference.
func (c *Client) Lookup(ctx context.Context, reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", errors.New("scripture: reference must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL(c.baseURL, c.bibleID, reference), nil)
	if err != nil {
		return "", fmt.Errorf("scripture: create request: %w", err)
	}
	key := c.apiKey
	if key == "" {
		key = demoKey
	}
	req.Header.Set("api-key", key)
	req.Header.Set("Accept", "application/json")

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("scripture: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("scripture: read response body: %w", err)
	}
	return parseSearchResponse(buf)
}

func parseSearchResponse(raw []byte) (string, error) {
	var payload searchResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &ParseError{Err: err}
	}
	if payload.Data == nil || len(payload.Data.Passages) == 0 {
		return "", ErrNotFound
	}
	content := strings.TrimSpace(payload.Data.Passages[0].Content)
	if content == "" {
		return "", ErrNotFound
	}
	return content, nil
}
