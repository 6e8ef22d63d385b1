// Package cohere adapts the Cohere v2 chat API (Command R family).
package cohere

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/httpclient"
	"github.com/nulzo/prism-fanout/internal/llm"
)

func init() {
	llm.Register(string(llm.Cohere), NewAdapter)
}

const (
	defaultBaseURL = "https://api.cohere.com/v2"
	defaultModel   = "command-r"
)

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Adapter{config: cfg, client: &http.Client{}}, nil
}

func (a *Adapter) Type() string { return string(llm.Cohere) }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

func (a *Adapter) Generate(ctx context.Context, prompt, credential string) (string, error) {
	if credential == "" {
		return "", errors.New("cohere_key_missing")
	}

	req := chatRequest{
		Model:    a.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + credential,
		"Accept":        "application/json",
	}
	url := fmt.Sprintf("%s/chat", strings.TrimRight(a.config.BaseURL, "/"))

	var resp chatResponse
	if err := httpclient.PostJSON(ctx, a.client, url, headers, req, &resp); err != nil {
		return "", httpclient.Describe(err, "cohere")
	}

	texts := make([]string, 0, len(resp.Message.Content))
	for _, c := range resp.Message.Content {
		if c.Type == "text" && c.Text != "" {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
