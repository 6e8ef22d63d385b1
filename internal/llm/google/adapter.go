package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/httpclient"
	"github.com/nulzo/prism-fanout/internal/llm"
)

const pn string = "google"

func init() {
	llm.Register(pn, NewAdapter)
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
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
	return &Adapter{
		config: cfg,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Type() string { return pn }

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
}
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}
type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// Shape wraps a single prompt in the Gemini request envelope.
func Shape(prompt string) GeminiRequest {
	return GeminiRequest{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: prompt}}}},
	}
}

// Text joins the non-empty text parts of the first candidate.
func (r GeminiResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Candidates[0].Content.Parts))
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (a *Adapter) Generate(ctx context.Context, prompt, credential string) (string, error) {
	if credential == "" {
		return "", errors.New("gemini_key_missing")
	}

	// the key travels in a header so it never shows up in error strings
	// that embed the request URL
	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(a.config.BaseURL, "/"),
		url.PathEscape(a.config.Model),
	)
	headers := map[string]string{
		"x-goog-api-key": credential,
	}

	var resp GeminiResponse
	if err := httpclient.PostJSON(ctx, a.client, endpoint, headers, Shape(prompt), &resp); err != nil {
		return "", httpclient.Describe(err, "gemini")
	}

	return resp.Text(), nil
}
