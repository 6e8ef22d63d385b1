package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UpstreamError represents an error returned by an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// APIError carries the message a vendor gave for a failed call.
type APIError struct {
	Message  string
	Upstream *UpstreamError
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Upstream
}

// Describe rewrites upstream failures into the vendor's own message, or
// "<label>_http_<status>" when the body carries none. Other errors pass through.
func Describe(err error, label string) error {
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	msg := ErrorMessage(upstreamErr.Body)
	if msg == "" {
		msg = fmt.Sprintf("%s_http_%d", label, upstreamErr.StatusCode)
	}
	return &APIError{Message: msg, Upstream: upstreamErr}
}

// ErrorMessage extracts a message from the common vendor error shapes:
// {"error":{"message":...}}, {"error":"..."} and {"message":...}.
func ErrorMessage(body []byte) string {
	var shape struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return ""
	}

	if len(shape.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(shape.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(shape.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}

	return shape.Message
}
