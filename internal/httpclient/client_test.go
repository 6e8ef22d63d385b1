package httpclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nulzo/prism-fanout/internal/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer ts.Close()

	var out struct {
		Value string `json:"value"`
	}
	err := httpclient.PostJSON(context.Background(), ts.Client(), ts.URL,
		map[string]string{"Authorization": "Bearer k"}, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Value)
}

func TestPostJSON_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer ts.Close()

	err := httpclient.PostJSON(context.Background(), ts.Client(), ts.URL+"?key=secret", nil, struct{}{}, nil)
	require.Error(t, err)

	var upstreamErr *httpclient.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.Equal(t, ts.URL, upstreamErr.URL)
	assert.NotContains(t, err.Error(), "secret")

	described := httpclient.Describe(err, "openai")
	assert.Equal(t, "Incorrect API key provided", described.Error())
	assert.True(t, errors.As(described, &upstreamErr))
}

func TestPostJSON_EmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	out := map[string]string{"kept": "yes"}
	err := httpclient.PostJSON(context.Background(), ts.Client(), ts.URL, nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["kept"])
}

func TestPostJSON_TransportErrorHidesURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := ts.URL + "/v1?key=secret"
	ts.Close()

	err := httpclient.PostJSON(context.Background(), http.DefaultClient, endpoint, nil, nil, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestPostJSON_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// drain so pre-1.22 servers notice the client hang-up
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := httpclient.PostJSON(ctx, ts.Client(), ts.URL, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested message", `{"error":{"message":"bad key"}}`, "bad key"},
		{"flat error string", `{"error":"quota exceeded"}`, "quota exceeded"},
		{"top level message", `{"message":"invalid api token"}`, "invalid api token"},
		{"empty body", ``, "gemini_http_503"},
		{"html body", `<html>oops</html>`, "gemini_http_503"},
		{"empty nested message", `{"error":{"message":""}}`, "gemini_http_503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &httpclient.UpstreamError{StatusCode: 503, Body: []byte(tt.body), URL: "http://x"}
			assert.Equal(t, tt.want, httpclient.Describe(err, "gemini").Error())
		})
	}

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, httpclient.Describe(plain, "openai"))
}
