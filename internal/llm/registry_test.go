package llm_test

import (
	"context"
	"testing"

	"github.com/nulzo/prism-fanout/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo() llm.Provider {
	return llm.ProviderFunc(func(_ context.Context, prompt, _ string) (string, error) {
		return prompt, nil
	})
}

func TestNewRegistry(t *testing.T) {
	reg, err := llm.NewRegistry(
		llm.Entry{ID: "gpt4o", CredentialName: "openai", Provider: echo()},
		llm.Entry{ID: "gemini", Name: "Google Gemini", CredentialName: "gemini", Provider: echo()},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	e, ok := reg.Lookup("gpt4o")
	require.True(t, ok)
	assert.Equal(t, "openai", e.CredentialName)
	assert.Equal(t, "gpt4o", e.Name, "name defaults to the id")

	_, ok = reg.Lookup("llama")
	assert.False(t, ok)

	entries := reg.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "gemini", entries[0].ID)
	assert.Equal(t, "gpt4o", entries[1].ID)
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []llm.Entry
	}{
		{"missing id", []llm.Entry{{CredentialName: "openai", Provider: echo()}}},
		{"missing provider", []llm.Entry{{ID: "gpt4o", CredentialName: "openai"}}},
		{"missing credential", []llm.Entry{{ID: "gpt4o", Provider: echo()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := llm.NewRegistry(tt.entries...)
			assert.Error(t, err)
		})
	}

	_, err := llm.NewRegistry(
		llm.Entry{ID: "gpt4o", CredentialName: "openai", Provider: echo()},
		llm.Entry{ID: "gpt4o", CredentialName: "openai", Provider: echo()},
	)
	assert.ErrorIs(t, err, llm.ErrProviderExists)
}
