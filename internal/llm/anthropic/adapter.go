package anthropic

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
	llm.Register(string(llm.Anthropic), NewAdapter)
}

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultVersion   = "2023-06-01"
	defaultMaxTokens = 1024
)

type Adapter struct {
	config    config.ProviderConfig
	client    *http.Client
	version   string
	maxTokens int
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	a := &Adapter{
		config:    cfg,
		client:    &http.Client{},
		version:   defaultVersion,
		maxTokens: defaultMaxTokens,
	}
	if v, ok := cfg.Config["version"]; ok && v != "" {
		a.version = v
	}
	if raw, ok := cfg.Config["max_tokens"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid max_tokens %q", raw)
		}
		a.maxTokens = n
	}
	return a, nil
}

func (a *Adapter) Type() string { return string(llm.Anthropic) }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
}
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
type Response struct {
	ID         string    `json:"id"`
	Content    []Content `json:"content"`
	StopReason string    `json:"stop_reason"`
}

func (a *Adapter) Generate(ctx context.Context, prompt, credential string) (string, error) {
	if credential == "" {
		return "", errors.New("anthropic_key_missing")
	}

	req := Request{
		Model:     a.config.Model,
		Messages:  []Message{{Role: "user", Content: prompt}},
		System:    a.config.Config["system_prompt"],
		MaxTokens: a.maxTokens,
	}
	headers := map[string]string{
		"x-api-key":         credential,
		"anthropic-version": a.version,
	}
	url := fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))

	var resp Response
	if err := httpclient.PostJSON(ctx, a.client, url, headers, req, &resp); err != nil {
		return "", httpclient.Describe(err, "anthropic")
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type != "text" {
			continue
		}
		sb.WriteString(c.Text)
	}
	return sb.String(), nil
}
