package ollamaclient

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
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaURL = "http://127.0.0.1:11434"
	DefaultTimeout   = 180 * time.Second
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

var jsonBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// NewClient builds a client for baseURL. A nil baseURL means the local
// default; a zero timeout means DefaultTimeout. The timeout only applies
// when httpClient is nil.
func NewClient(baseURL *url.URL, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == nil {
		var err error
		baseURL, err = url.Parse(DefaultOllamaURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse default ollama URL: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       100,
				IdleConnTimeout:    90 * time.Second,
				DisableCompression: false,
				MaxConnsPerHost:    100,
				ForceAttemptHTTP2:  true,
			},
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) Show(ctx context.Context, req *api.ShowRequest) (*api.ShowResponse, error) {
	var resp api.ShowResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/show", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("show model request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetBaseURL() *url.URL {
	return c.baseURL
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqData, respData any) error {
	reqBody, err := c.prepareRequestBody(reqData)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := reqBody.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	request, err := c.buildRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	c.setJSONHeaders(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
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

func (c *Client) prepareRequestBody(reqData any) (io.Reader, error) {
	buf, ok := jsonBufferPool.Get().(*bytes.Buffer)
	if !ok {
		return nil, errors.New("failed get data from buffer")
	}
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(reqData); err != nil {
		jsonBufferPool.Put(buf)
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}

	return struct {
		io.Reader
		io.Closer
	}{
		Reader: buf,
		Closer: closerFunc(func() {
			jsonBufferPool.Put(buf)
		}),
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	requestURL := c.baseURL.JoinPath(path)

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	return request, nil
}

func (c *Client) setJSONHeaders(request *http.Request) {
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
}

func (c *Client) checkError(response *http.Response) error {
	if response.StatusCode < http.StatusBadRequest {
		return nil
	}

	statusErr := StatusError{StatusCode: response.StatusCode, Status: response.Status}
	if err := json.NewDecoder(response.Body).Decode(&statusErr); err != nil {
		statusErr.ErrorMessage = http.StatusText(response.StatusCode)
	}
	return fmt.Errorf("ollama API error (status %d): %w", response.StatusCode, statusErr)
}
