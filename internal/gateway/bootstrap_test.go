package gateway_test

import (
	"testing"

	"github.com/nulzo/prism-fanout/internal/cli"
	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	_ "github.com/nulzo/prism-fanout/internal/llm/google"
	_ "github.com/nulzo/prism-fanout/internal/llm/openai"
)

func TestBootstrapRegistry(t *testing.T) {
	reg, err := gateway.BootstrapRegistry([]config.ProviderConfig{
		{ID: "gpt4o", Type: "openai", Credential: "openai", Enabled: true},
		{ID: "gemini", Type: "google", Credential: "gemini", Enabled: true, APIKey: "g-key"},
		{ID: "grok", Type: "openai", Credential: "xai", Enabled: false},
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	e, ok := reg.Lookup("gemini")
	require.True(t, ok)
	assert.Equal(t, "gemini", e.CredentialName)
	_, ok = reg.Lookup("grok")
	assert.False(t, ok)
}

func TestBootstrapRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []config.ProviderConfig
		is   error
	}{
		{"missing credential name", []config.ProviderConfig{{ID: "a", Type: "openai", Enabled: true}}, nil},
		{"bad base url", []config.ProviderConfig{{ID: "a", Type: "openai", Credential: "c", BaseURL: "not a url", Enabled: true}}, nil},
		{"unknown type", []config.ProviderConfig{{ID: "a", Type: "carrier-pigeon", Credential: "c", Enabled: true}}, llm.ErrUnknownType},
		{"duplicate id", []config.ProviderConfig{
			{ID: "a", Type: "openai", Credential: "c", Enabled: true},
			{ID: "a", Type: "google", Credential: "d", Enabled: true},
		}, llm.ErrProviderExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.BootstrapRegistry(tt.rows, zap.NewNop())
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestBootstrapRegistry_LogsRejectedRow(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	_, err := gateway.BootstrapRegistry([]config.ProviderConfig{
		{ID: "pigeon", Type: "carrier-pigeon", Credential: "c", Enabled: true},
	}, zap.New(core))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `provider "pigeon"`)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, cli.CrossMark())
	assert.Contains(t, entries[0].Message, "pigeon")
	assert.Equal(t, "carrier-pigeon", entries[0].ContextMap()["type"])
}
