package ollamaclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"
)

const (
	MaxBufferSize = 512 * 1024
)

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Chat posts a chat request and folds the NDJSON chunks into one response.
// The server may stream even when asked not to, so chunks are always merged.
func (c *Client) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	var finalResp api.ChatResponse
	var content strings.Builder

	err := c.streamRequest(ctx, http.MethodPost, "/api/chat", req, func(data []byte) error {
		var chunk api.ChatResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			return fmt.Errorf("unmarshal chat chunk: %w", err)
		}
		content.WriteString(chunk.Message.Content)
		if chunk.Done {
			finalResp = chunk
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	finalResp.Message.Content = content.String()
	return &finalResp, nil
}

func (c *Client) streamRequest(ctx context.Context, method, path string, reqData any, callback func([]byte) error) error {
	buf, ok := bufferPool.Get().(*bytes.Buffer)
	if !ok {
		return errors.New("failed get data from buffer")
	}
	buf.Reset()
	defer bufferPool.Put(buf)

	if reqData != nil {
		if err := json.NewEncoder(buf).Encode(reqData); err != nil {
			c.logger.Debug("error marshalling request body", "error", err)
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	requestURL := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, requestURL.String(), buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Ollama API stream request failed",
			"status", resp.StatusCode,
			"method", method,
			"url", requestURL.String(),
			"response_body", string(body),
		)
		statusErr := StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		if err := json.Unmarshal(body, &statusErr); err != nil || statusErr.ErrorMessage == "" {
			statusErr.ErrorMessage = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("HTTP %d: %w", resp.StatusCode, statusErr)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, MaxBufferSize), MaxBufferSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := callback(line); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read error: %w", err)
	}

	return nil
}
