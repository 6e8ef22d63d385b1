package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/httpclient"
	"github.com/nulzo/prism-fanout/internal/llm"
)

func init() {
	llm.Register(string(llm.OpenAI), NewAdapter)
}

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultModel        = "gpt-4o-mini"
	defaultSystemPrompt = "You are a helpful assistant."
	defaultTemperature  = 0.7
)

// Adapter talks to any OpenAI compatible chat completions endpoint. xAI,
// Mistral and OpenRouter reuse it with their own base URL.
type Adapter struct {
	config       config.ProviderConfig
	client       *http.Client
	label        string
	systemPrompt string
	temperature  float64
	headers      map[string]string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	a := &Adapter{
		config: cfg,
		// the deadline comes from the caller's context
		client:       &http.Client{},
		label:        "openai",
		systemPrompt: defaultSystemPrompt,
		temperature:  defaultTemperature,
		headers:      make(map[string]string),
	}

	if label, ok := cfg.Config["label"]; ok && label != "" {
		a.label = label
	}
	if sp, ok := cfg.Config["system_prompt"]; ok {
		a.systemPrompt = sp
	}
	if raw, ok := cfg.Config["temperature"]; ok {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature %q: %w", raw, err)
		}
		a.temperature = t
	}
	if org, ok := cfg.Config["organization"]; ok {
		a.headers["OpenAI-Organization"] = org
	}
	// OpenRouter ranks apps by these
	if referer, ok := cfg.Config["referer"]; ok {
		a.headers["HTTP-Referer"] = referer
	}
	if title, ok := cfg.Config["title"]; ok {
		a.headers["X-Title"] = title
	}

	return a, nil
}

func (a *Adapter) Type() string {
	return string(llm.OpenAI)
}

func (a *Adapter) Generate(ctx context.Context, prompt, credential string) (string, error) {
	if credential == "" {
		return "", errors.New(a.label + "_key_missing")
	}

	headers := map[string]string{
		"Authorization": "Bearer " + credential,
	}
	for k, v := range a.headers {
		headers[k] = v
	}

	messages := make([]message, 0, 2)
	if a.systemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: a.systemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: prompt})

	req := chatRequest{
		Model:       a.config.Model,
		Messages:    messages,
		Temperature: a.temperature,
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.BaseURL, "/"))

	var resp chatResponse
	if err := httpclient.PostJSON(ctx, a.client, url, headers, req, &resp); err != nil {
		return "", httpclient.Describe(err, a.label)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
