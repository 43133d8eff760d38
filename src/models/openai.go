package models

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAILLM drives OpenAI-compatible chat completion APIs. OpenRouter uses
// the same wire protocol, so both providers share this implementation with a
// different base URL.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM creates a client for api.openai.com.
func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAILLM{client: openai.NewClient(apiKey), model: model}
}

// NewOpenRouterLLM creates an OpenAI-compatible client pointed at OpenRouter.
func NewOpenRouterLLM(apiKey, baseURL, model string) *OpenAILLM {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAILLM{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Agent = (*OpenAILLM)(nil)
