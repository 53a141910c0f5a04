package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

const (
	maxTextLength    = 8000
	maxResponseBytes = 1 << 20
)

// ErrInterpreterUnavailable is returned when the service cannot be reached or
// answers with an error.
var ErrInterpreterUnavailable = fmt.Errorf("interpret: interpreter unavailable: %w", httpx.ErrUnavailable)

// HTTPClient calls a JSON interpretation endpoint.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient constructs a client for endpoint.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Interpret posts the text and decodes the draft.
func (c *HTTPClient) Interpret(ctx context.Context, req Request) (Draft, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Draft{}, fmt.Errorf("%w: text is required", httpx.ErrValidation)
	}
	if len(text) > maxTextLength {
		return Draft{}, fmt.Errorf("%w: text exceeds %d characters", httpx.ErrValidation, maxTextLength)
	}

	payload, err := json.Marshal(Request{Text: text})
	if err != nil {
		return Draft{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrInterpreterUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrInterpreterUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Draft{}, fmt.Errorf("%w: status %d", ErrInterpreterUnavailable, resp.StatusCode)
	}

	var draft Draft
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&draft); err != nil {
		return Draft{}, fmt.Errorf("%w: decode response: %v", ErrInterpreterUnavailable, err)
	}
	return draft, nil
}
