package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaLLM drives a local or remote Ollama server.
type OllamaLLM struct {
	client *ollama.Client
	model  string
}

func NewOllamaLLM(baseURL, model string) (*OllamaLLM, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", baseURL, err)
	}
	httpClient := &http.Client{Timeout: 120 * time.Second}
	return &OllamaLLM{client: ollama.NewClient(u, httpClient), model: model}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
	}
	if err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return "", err
	}
	return text.String(), nil
}

var _ Agent = (*OllamaLLM)(nil)
