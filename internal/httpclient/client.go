package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Doer is satisfied by *http.Client and by test fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	// maxErrorBody caps how much of a failed response is kept for diagnostics.
	maxErrorBody = 64 << 10
	// maxResponseBody caps a successful completion payload.
	maxResponseBody = 8 << 20
)

// PostJSON sends body as JSON to endpoint and decodes a 2xx reply into out.
// Non-2xx replies come back as *UpstreamError. An empty 2xx body leaves out
// untouched.
func PostJSON(ctx context.Context, client Doer, endpoint string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		// *url.Error repeats the full URL; keep only the cause
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("request failed: %w", urlErr.Err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        redact(endpoint),
		}
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// redact drops the query string and userinfo, either may carry a key.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	u.Fragment = ""
	return u.String()
}
