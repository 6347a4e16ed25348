package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultTimeout    = 180 * time.Second
	DefaultMaxRetries = 3

	maxBackoff = 8 * time.Second
)

type Client struct {
	baseURL     *url.URL
	apiKey      string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
	logger      *slog.Logger
}

var jsonBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Config carries the connection settings. Zero values fall back to defaults,
// except MaxRetries where a negative value disables retries.
type Config struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	Logger      *slog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
				ForceAttemptHTTP2: true,
			},
		}
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	backoff := cfg.BaseBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		httpClient:  httpClient,
		maxRetries:  retries,
		baseBackoff: backoff,
		logger:      logger,
	}, nil
}

// CreateChatCompletion posts a non-streaming chat completion request. Transport
// errors and retryable status codes are retried up to maxRetries times with
// exponential backoff, honouring Retry-After when the server sends it.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt, lastErr)
			c.logger.WarnContext(ctx, "retrying chat completion",
				"attempt", attempt, "max_retries", c.maxRetries, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("chat completion canceled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(wait):
			}
		}

		lastErr = c.doRequest(ctx, http.MethodPost, "/chat/completions", req, &resp)
		if lastErr == nil {
			return &resp, nil
		}
		if !isRetryable(lastErr) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) GetBaseURL() *url.URL {
	return c.baseURL
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqData, respData any) error {
	buf, ok := jsonBufferPool.Get().(*bytes.Buffer)
	if !ok {
		return errors.New("failed get data from buffer")
	}
	buf.Reset()
	defer jsonBufferPool.Put(buf)

	if reqData != nil {
		if err := json.NewEncoder(buf).Encode(reqData); err != nil {
			return fmt.Errorf("failed to encode request data: %w", err)
		}
	}

	requestURL := c.baseURL.JoinPath(path)
	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &transportError{err: err}
	}
	defer response.Body.Close()

	if err := c.checkError(response); err != nil {
		return err
	}

	if respData != nil {
		if err := json.NewDecoder(response.Body).Decode(respData); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) checkError(response *http.Response) error {
	if response.StatusCode < http.StatusBadRequest {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, 64*1024))
	statusErr := &StatusError{StatusCode: response.StatusCode}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		// Some compatible gateways send the error as a bare string.
		if jerr := json.Unmarshal(envelope.Error, statusErr); jerr != nil {
			_ = json.Unmarshal(envelope.Error, &statusErr.Message)
		}
	}
	if statusErr.Message == "" {
		statusErr.Message = http.StatusText(response.StatusCode)
	}
	statusErr.StatusCode = response.StatusCode

	if after := response.Header.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil {
			return &retryAfterError{StatusError: statusErr, after: time.Duration(secs) * time.Second}
		}
	}
	return statusErr
}

func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	var ra *retryAfterError
	if errors.As(lastErr, &ra) && ra.after > 0 && ra.after <= maxBackoff {
		return ra.after
	}
	wait := c.baseBackoff << (attempt - 1)
	return min(wait, maxBackoff)
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "openai: HTTP request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type retryAfterError struct {
	*StatusError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.StatusError }

func isRetryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return !errors.Is(err, context.Canceled)
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}
