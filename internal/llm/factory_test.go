package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory(t *testing.T) {
	llm.Register("factory-test", func(cfg config.ProviderConfig) (llm.Provider, error) {
		return llm.ProviderFunc(func(context.Context, string, string) (string, error) {
			return cfg.Model, nil
		}), nil
	})

	p, err := llm.CreateProvider(config.ProviderConfig{Type: "factory-test", Model: "m1"})
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), "hi", "k")
	require.NoError(t, err)
	assert.Equal(t, "m1", out)

	assert.Panics(t, func() {
		llm.Register("factory-test", nil)
	})

	assert.Contains(t, llm.Types(), "factory-test")

	_, err = llm.CreateProvider(config.ProviderConfig{Type: "nope"})
	assert.ErrorIs(t, err, llm.ErrUnknownType)
	assert.Contains(t, err.Error(), "factory-test")
}

func TestCreateProvider_FactoryError(t *testing.T) {
	llm.Register("factory-broken", func(config.ProviderConfig) (llm.Provider, error) {
		return nil, errors.New("bad temperature")
	})

	_, err := llm.CreateProvider(config.ProviderConfig{Type: "factory-broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build factory-broken adapter")
	assert.Contains(t, err.Error(), "bad temperature")
}
