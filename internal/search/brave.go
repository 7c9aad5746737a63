package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/aly-chat/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"
	DefaultLimit    = 5

	// FailureMessage is reported on every failed search attempt.
	FailureMessage = "Failed to perform web search"
)

var tracer = otel.Tracer("aly.internal.search")

// Result is one normalized web hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Outcome wraps a single search attempt. When Success is false Results is
// empty and Error is set.
type Outcome struct {
	Success   bool      `json:"success"`
	Results   []Result  `json:"results"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type braveResponse struct {
	Web *struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

// BraveClient queries the Brave Search web endpoint.
type BraveClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
	now        func() time.Time
}

// BraveOption customizes the client.
type BraveOption func(*BraveClient)

// WithEndpoint overrides the search endpoint URL.
func WithEndpoint(endpoint string) BraveOption {
	return func(c *BraveClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) BraveOption {
	return func(c *BraveClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) BraveOption {
	return func(c *BraveClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewBraveClient creates a Brave Search client.
func NewBraveClient(apiKey string, opts ...BraveOption) *BraveClient {
	c := &BraveClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		logger:     logging.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one query. It never returns an error; failures are reported
// through the Outcome.
func (c *BraveClient) Search(ctx context.Context, query string, limit int) Outcome {
	ctx, span := tracer.Start(ctx, "search.brave")
	defer span.End()
	if limit <= 0 {
		limit = DefaultLimit
	}
	span.SetAttributes(attribute.String("aly.search.query", query))

	results, err := c.fetch(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			c.logger.Debug("search: brave request cancelled", "error", err, "query", query)
		} else {
			c.logger.Error("search: brave request failed", "error", err, "query", query)
		}
		return Outcome{Success: false, Results: []Result{}, Query: query, Timestamp: c.now().UTC(), Error: FailureMessage}
	}
	return Outcome{Success: true, Results: results, Query: query, Timestamp: c.now().UTC()}
}

func (c *BraveClient) fetch(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))
	endpoint := c.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("search: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var decoded braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	if decoded.Web == nil || decoded.Web.Results == nil {
		return []Result{}, nil
	}
	return decoded.Web.Results, nil
}
