package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"

	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 120 * time.Second

	// defaultMaxResponseBytes guards a memory-constrained process against a
	// pathological upstream; a chat completion should never approach it.
	defaultMaxResponseBytes = 5 * 1024 * 1024
)

// ErrMalformedResponse reports a 2xx response whose body does not carry a
// usable completion (bad JSON, no choices, empty content).
var ErrMalformedResponse = errors.New("deepseek: malformed response")

// ErrResponseTooLarge reports a response body over the configured ceiling.
// The body is not consumed past the limit.
var ErrResponseTooLarge = errors.New("deepseek: response exceeds size limit")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepseek: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client performs chat completions against the DeepSeek API.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// ChatCompletionRequest is the request body for POST /chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response from POST /chat/completions.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeouts sets the dial timeout and the whole-request timeout
// separately. Model generation dominates latency, so the read window is
// much longer than the connect window.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *httpClient) {
		c.http = newHTTPClient(connect, read)
	}
}

// WithRateLimit throttles outbound requests to n per second.
func WithRateLimit(n float64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithMaxResponseBytes overrides the response-size ceiling.
func WithMaxResponseBytes(n int64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

type httpClient struct {
	apiKey           string
	baseURL          string
	model            string
	http             *http.Client
	limiter          *rate.Limiter
	maxResponseBytes int64
}

func newHTTPClient(connect, read time.Duration) *http.Client {
	return &http.Client{
		Timeout: read,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: connect}).DialContext,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewClient creates a DeepSeek API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:           apiKey,
		baseURL:          defaultBaseURL,
		model:            defaultModel,
		http:             newHTTPClient(defaultConnectTimeout, defaultReadTimeout),
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "deepseek: rate limit wait")
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "deepseek: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "deepseek: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "deepseek: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.ContentLength > c.maxResponseBytes {
		return nil, eris.Wrapf(ErrResponseTooLarge, "content-length %d > %d", resp.ContentLength, c.maxResponseBytes)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "deepseek: read response")
	}
	if int64(len(respBody)) > c.maxResponseBytes {
		return nil, eris.Wrapf(ErrResponseTooLarge, "body exceeds %d bytes", c.maxResponseBytes)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "unmarshal: %v", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, eris.Wrap(ErrMalformedResponse, "no completion content")
	}

	return &result, nil
}
