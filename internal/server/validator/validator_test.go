package validator

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/nulzo/prism-fanout/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *api.GenerateRequest {
	t.Helper()
	var req api.GenerateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestValidate(t *testing.T) {
	v := New()

	req, err := v.Validate(decode(t, `{
		"prompt": "  hello world \n",
		"toggles": {"gpt4o": true, "gemini": false, "claude": 1, "grok": 0, "mistral": "yes", "cohere": ""},
		"credentials": {"openai": "sk-req", "gemini": 42, "xai": ""},
		"keys": {"openai": "sk-legacy", "anthropic": "sk-ant"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "hello world", req.Prompt)
	assert.Equal(t, []string{"claude", "gpt4o", "mistral"}, req.Enabled)
	assert.Equal(t, map[string]string{"openai": "sk-req", "anthropic": "sk-ant"}, req.Credentials)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"missing prompt", `{"toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"empty prompt", `{"prompt": "", "toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"whitespace prompt", `{"prompt": " \t\n ", "toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"numeric prompt", `{"prompt": 42, "toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"object prompt", `{"prompt": {"text": "hi"}, "toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"null prompt", `{"prompt": null, "toggles": {"a": true}}`, api.ReasonPromptRequired},
		{"no toggles", `{"prompt": "hi"}`, api.ReasonNoModelsEnabled},
		{"all toggles off", `{"prompt": "hi", "toggles": {"a": false, "b": 0}}`, api.ReasonNoModelsEnabled},
		{"prompt checked first", `{"prompt": "", "toggles": {}}`, api.ReasonPromptRequired},
		{"empty object", `{}`, api.ReasonPromptRequired},
		{"toggles array", `{"prompt": "hi", "toggles": [true]}`, api.ReasonNoModelsEnabled},
		{"toggles string", `{"prompt": "hi", "toggles": "gpt4o"}`, api.ReasonNoModelsEnabled},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(decode(t, tt.body))
			require.Error(t, err)

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.reason, apiErr.Reason)
			assert.NotEmpty(t, apiErr.Detail)
		})
	}
}

func TestValidate_IgnoresMisshapedCredentials(t *testing.T) {
	v := New()
	for _, body := range []string{
		`{"prompt": "hi", "toggles": {"a": true}, "credentials": "oops"}`,
		`{"prompt": "hi", "toggles": {"a": true}, "credentials": ["sk"], "keys": 7}`,
		`{"prompt": "hi", "toggles": {"a": true}, "credentials": null}`,
	} {
		req, err := v.Validate(decode(t, body))
		require.NoError(t, err, body)
		assert.Equal(t, []string{"a"}, req.Enabled)
		assert.Empty(t, req.Credentials)
	}
}

func TestValidate_NilPayload(t *testing.T) {
	_, err := New().Validate(nil)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.ReasonInvalidBody, apiErr.Reason)
}

func TestParseError(t *testing.T) {
	v := New()
	type query struct {
		Limit int `form:"limit" validate:"min=1"`
	}
	err := v.validate.Struct(query{Limit: 0})
	require.Error(t, err)

	msgs := v.ParseError(err)
	assert.Contains(t, msgs, "limit")
	assert.Contains(t, msgs["limit"], "1 or greater")

	assert.Equal(t, map[string]string{"body": "malformed payload"}, v.ParseError(errors.New("eof")))
}
