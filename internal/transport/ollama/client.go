// Package ollama is the generation gateway to an Ollama model server.
//
// Generate tries the chat endpoint first and falls back to the completion
// endpoint only when chat is missing (404) or answers 2xx with a body that
// has no message. Any other chat failure is returned as is; the completion
// endpoint is not tried.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/metrics"
)

const (
	chatPath     = "/api/chat"
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"

	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

// Config holds model server settings.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Options are per-call sampling settings.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client talks to the Ollama native API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a generation client. A single http.Client timeout bounds every request; there are no retries.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    hc,
		logger:  logger,
	}
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	Options     chatOptions   `json:"options"`
}

type chatOptions struct {
	NumPredict int `json:"num_predict"`
}

type chatResponse struct {
	Message *chatMessage `json:"message"`
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Generate returns the model's answer to prompt, trimmed of surrounding whitespace.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	text, fallback, err := c.chat(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if fallback == "" {
		return text, nil
	}

	metrics.GenerationFallbacksTotal.WithLabelValues(c.model, fallback).Inc()
	c.logger.Debug("Chat endpoint unavailable, falling back to completion",
		zap.String("reason", fallback),
	)

	return c.complete(ctx, prompt, opts)
}

// chat performs the first attempt. A non-empty fallback reason means the completion endpoint should be tried.
func (c *Client) chat(ctx context.Context, prompt string, opts Options) (text, fallback string, err error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		Options:     chatOptions{NumPredict: opts.MaxTokens},
	}

	status, body, err := c.post(ctx, chatPath, req)
	if err != nil {
		return "", "", err
	}

	if status == http.StatusNotFound {
		c.observe(chatPath, "not_found")
		return "", "not_found", nil
	}
	if status < 200 || status >= 300 {
		c.observe(chatPath, "error")
		return "", "", &RequestError{Endpoint: chatPath, StatusCode: status, Body: excerpt(body)}
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Message == nil {
		c.observe(chatPath, "bad_body")
		return "", "bad_body", nil
	}

	c.observe(chatPath, "success")
	return strings.TrimSpace(resp.Message.Content), "", nil
}

// complete is the terminal attempt: every failure is returned.
func (c *Client) complete(ctx context.Context, prompt string, opts Options) (string, error) {
	req := generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		NumPredict:  opts.MaxTokens,
	}

	status, body, err := c.post(ctx, generatePath, req)
	if err != nil {
		return "", err
	}

	if status < 200 || status >= 300 {
		c.observe(generatePath, "error")
		return "", &RequestError{Endpoint: generatePath, StatusCode: status, Body: excerpt(body)}
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Response == nil {
		c.observe(generatePath, "bad_body")
		return "", fmt.Errorf("ollama %s: undecodable response: %w", generatePath, ErrRequestFailed)
	}

	c.observe(generatePath, "success")
	return strings.TrimSpace(*resp.Response), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GenerationRequestDuration.WithLabelValues(c.model, path).Observe(time.Since(start).Seconds())
	if err != nil {
		c.observe(path, "transport_error")
		return 0, nil, fmt.Errorf("ollama %s: %w: %w", path, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(path, "transport_error")
		return 0, nil, fmt.Errorf("ollama %s: read body: %w: %w", path, ErrRequestFailed, err)
	}

	c.logger.Debug("Generation response",
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	return resp.StatusCode, body, nil
}

// Ping checks that the model server answers GET /api/tags.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tagsPath, nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama ping: %w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Endpoint: tagsPath, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) observe(endpoint, status string) {
	metrics.GenerationRequestsTotal.WithLabelValues(c.model, endpoint, status).Inc()
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

// IsRequestError reports whether err carries a non-2xx model server response and returns it.
func IsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
