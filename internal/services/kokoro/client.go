package kokoro

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/alignment"
	"reelforge/internal/services"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
	defaultEndpoint       = "/dev/captioned_speech"
	defaultModel          = "kokoro"
	defaultFormat         = "mp3"
	stageName             = "tts"
)

// Config captures the settings required to talk to the speech backend.
type Config struct {
	BaseURL        string
	Endpoint       string
	Model          string
	ResponseFormat string
	TimeoutSeconds int
}

// Client calls the captioned speech endpoint of a Kokoro-FastAPI server.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a speech client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Endpoint:       strings.TrimSpace(cfg.Endpoint),
			Model:          strings.TrimSpace(cfg.Model),
			ResponseFormat: strings.ToLower(strings.TrimSpace(cfg.ResponseFormat)),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.Endpoint == "" {
		client.cfg.Endpoint = defaultEndpoint
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.ResponseFormat == "" {
		client.cfg.ResponseFormat = defaultFormat
	}
	return client
}

// Request describes one narration to synthesize.
type Request struct {
	Input string
	Voice string
	Speed float64
}

// Speech is the decoded backend response.
type Speech struct {
	Audio  []byte
	Format string
	Tokens []alignment.Token
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
	Stream         bool    `json:"stream"`
}

type speechResponse struct {
	Audio      *string         `json:"audio"`
	Timestamps json.RawMessage `json:"timestamps"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("tts request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Format reports the audio container requested from the backend.
func (c *Client) Format() string {
	return c.cfg.ResponseFormat
}

// Model reports the configured synthesis model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Synthesize renders req to audio and returns it with its word timestamps.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Speech, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "synthesize", "input text required", nil)
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "synthesize", "voice required", nil)
	}
	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}
	payload := speechRequest{
		Model:          c.cfg.Model,
		Input:          input,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: c.cfg.ResponseFormat,
		Stream:         false,
	}

	body, err := c.sendWithRetry(ctx, payload)
	if err != nil {
		return nil, classify(err)
	}

	var decoded speechResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, stageName, "decode response", summarizePayloadSnippet(string(body)), err)
	}
	if decoded.Audio == nil || *decoded.Audio == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "decode response", "response has no audio", nil)
	}
	audio, err := base64.StdEncoding.DecodeString(*decoded.Audio)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "decode audio", "invalid base64", err)
	}
	if len(decoded.Timestamps) == 0 || string(decoded.Timestamps) == "null" {
		return nil, services.Wrap(services.ErrValidation, stageName, "decode response", "response has no timestamps", nil)
	}
	tokens, err := alignment.DecodeTokens(decoded.Timestamps)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "decode timestamps", "", err)
	}
	return &Speech{Audio: audio, Format: c.cfg.ResponseFormat, Tokens: tokens}, nil
}

// Ping checks that the backend answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "health")
	if err != nil {
		return fmt.Errorf("tts ping: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("tts ping: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("tts ping: http %d", resp.StatusCode)
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, stageName, "synthesize", "request timed out", err)
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError &&
		statusErr.StatusCode != http.StatusTooManyRequests && statusErr.StatusCode != http.StatusRequestTimeout {
		return services.Wrap(services.ErrExternalTool, stageName, "synthesize", "backend rejected request", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, stageName, "synthesize", "request timed out", err)
	}
	return services.Wrap(services.ErrTransient, stageName, "synthesize", "backend unavailable", err)
}

func (c *Client) sendWithRetry(ctx context.Context, payload speechRequest) ([]byte, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.sendOnce(ctx, payload)
		if err == nil {
			return body, nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return nil, err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload speechRequest) ([]byte, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("tts request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("tts request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts request: read body (timeout=%s): %w", c.timeoutDuration(), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       summarizePayloadSnippet(string(body)),
			RetryAfter: retryAfter,
		}
	}
	return body, nil
}

func (c *Client) timeoutDuration() time.Duration {
	if c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	// The server restarting between attempts shows up as a refused dial.
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
