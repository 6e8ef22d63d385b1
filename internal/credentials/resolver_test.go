package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver(map[string]string{
		"openai": "sk-fallback",
		"empty":  "",
	})

	tests := []struct {
		name       string
		credential string
		request    map[string]string
		want       string
		wantOK     bool
	}{
		{"request wins over fallback", "openai", map[string]string{"openai": "sk-request"}, "sk-request", true},
		{"fallback when request missing", "openai", nil, "sk-fallback", true},
		{"fallback when request empty", "openai", map[string]string{"openai": ""}, "sk-fallback", true},
		{"request only", "gemini", map[string]string{"gemini": "g-key"}, "g-key", true},
		{"absent everywhere", "gemini", map[string]string{}, "", false},
		{"empty fallback is absent", "empty", nil, "", false},
		{"invalid request value still wins", "openai", map[string]string{"openai": "not-a-real-key"}, "not-a-real-key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.credential, tt.request)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewResolver_CopiesFallbacks(t *testing.T) {
	src := map[string]string{"openai": "sk-1"}
	r := NewResolver(src)
	src["openai"] = "sk-2"
	src["gemini"] = "g-1"

	got, _ := r.Resolve("openai", nil)
	assert.Equal(t, "sk-1", got)
	assert.False(t, r.HasFallback("gemini"))
	assert.True(t, r.HasFallback("openai"))
}
