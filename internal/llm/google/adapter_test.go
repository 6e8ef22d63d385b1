package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_SimpleText(t *testing.T) {
	geminiReq := Shape("Hello!")

	assert.Len(t, geminiReq.Contents, 1)
	assert.Empty(t, geminiReq.Contents[0].Role)
	assert.Equal(t, "Hello!", geminiReq.Contents[0].Parts[0].Text)
}

func TestResponseText_JoinsParts(t *testing.T) {
	resp := GeminiResponse{Candidates: []GeminiCandidate{{
		Content: GeminiContent{Parts: []GeminiPart{{Text: "one"}, {Text: ""}, {Text: "two"}}},
	}}}
	assert.Equal(t, "one\ntwo", resp.Text())
	assert.Equal(t, "", GeminiResponse{}.Text())
}

func TestGenerate_RealCallStructure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]interface{})
		assert.NotEmpty(t, contents)

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{
							{"text": "Gemini response"},
						},
					},
					"finishReason": "STOP",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	adapter, err := NewAdapter(config.ProviderConfig{BaseURL: ts.URL})
	require.NoError(t, err)

	text, err := adapter.Generate(context.Background(), "Explain Go", "test-key")
	assert.NoError(t, err)
	assert.Equal(t, "Gemini response", text)
}

func TestGenerate_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer ts.Close()

	adapter, err := NewAdapter(config.ProviderConfig{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = adapter.Generate(context.Background(), "x", "bad")
	assert.EqualError(t, err, "API key not valid. Please pass a valid API key.")

	_, err = adapter.Generate(context.Background(), "x", "")
	assert.EqualError(t, err, "gemini_key_missing")
}
