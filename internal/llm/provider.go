package llm

import (
	"context"
)

type ProviderType string

const (
	OpenAI    ProviderType = "openai"
	Google    ProviderType = "google"
	Anthropic ProviderType = "anthropic"
	Cohere    ProviderType = "cohere"
)

// Provider is the uniform contract every vendor adapter implements. The
// credential is supplied per call so one adapter instance can serve callers
// that bring their own key.
type Provider interface {
	Type() string
	Generate(ctx context.Context, prompt, credential string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, prompt, credential string) (string, error)

func (f ProviderFunc) Type() string {
	return "func"
}

func (f ProviderFunc) Generate(ctx context.Context, prompt, credential string) (string, error) {
	return f(ctx, prompt, credential)
}
