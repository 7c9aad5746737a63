package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	defaultReferer = "https://localhost:3000"
	defaultTitle   = "DeepSeek Chat App"

	maxErrorBody = 64 << 10
)

var tracer = otel.Tracer("aly.internal.completion")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client talks to the OpenRouter chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
	chat       chatClient
	logger     *logging.Logger
	metrics    *metrics.ChatMetrics
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithBaseURL overrides the provider base URL (must include /api/v1).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records skipped stream frames.
func WithMetrics(m *metrics.ChatMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithReferer sets the HTTP-Referer attribution header.
func WithReferer(referer string) ClientOption {
	return func(c *Client) {
		if referer != "" {
			c.referer = referer
		}
	}
}

// WithTitle sets the X-Title attribution header.
func WithTitle(title string) ClientOption {
	return func(c *Client) {
		if title != "" {
			c.title = title
		}
	}
}

// NewClient creates an OpenRouter client. An empty apiKey yields a client
// whose calls fail with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		referer:    defaultReferer,
		title:      defaultTitle,
		httpClient: &http.Client{},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient = &http.Client{
		Transport:     &attributionTransport{base: base, referer: c.referer, title: c.title},
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
	}

	oaCfg := openai.DefaultConfig(c.apiKey)
	oaCfg.BaseURL = c.baseURL
	oaCfg.HTTPClient = c.httpClient
	c.chat = openai.NewClientWithConfig(oaCfg)
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Complete performs a non-streaming completion and returns the trimmed text
// of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}
	ctx, span := tracer.Start(ctx, "completion.complete")
	defer span.End()
	span.SetAttributes(attribute.String("aly.model", req.Model))

	resp, err := c.chat.CreateChatCompletion(ctx, req.openAI(false))
	if err != nil {
		err = mapProviderError(err)
		span.RecordError(err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		err := errors.New("completion: response contained no choices")
		span.RecordError(err)
		return "", err
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		err := errors.New("completion: response content was empty")
		span.RecordError(err)
		return "", err
	}
	return text, nil
}

// Stream starts a streaming completion. A non-2xx provider response is
// returned as *UpstreamError carrying the raw body text.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	ctx, span := tracer.Start(ctx, "completion.stream")
	defer span.End()
	span.SetAttributes(attribute.String("aly.model", req.Model))

	payload, err := json.Marshal(req.openAI(true))
	if err != nil {
		return nil, fmt.Errorf("completion: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("completion: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("completion: stream request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		upErr := &UpstreamError{Status: resp.StatusCode, Details: string(body)}
		span.RecordError(upErr)
		return nil, upErr
	}
	return newStream(resp.Body, c.logger, c.metrics), nil
}

func mapProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &UpstreamError{Status: apiErr.HTTPStatusCode, Details: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		details := ""
		if reqErr.Err != nil {
			details = reqErr.Err.Error()
		}
		return &UpstreamError{Status: reqErr.HTTPStatusCode, Details: details}
	}
	return fmt.Errorf("completion: request failed: %w", err)
}

// attributionTransport adds the OpenRouter app attribution headers.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(req)
}
