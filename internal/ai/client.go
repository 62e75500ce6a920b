// Package ai provides consultation threads backed by an LLM. When no API
// key is configured a stub client answers instead, so the feature works in
// development without external calls.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-3-haiku-20240307"
	maxTokens        = 1024
)

// LlmClient answers a single chat turn given a system prompt and the
// accumulated conversation context.
type LlmClient interface {
	Chat(ctx context.Context, systemPrompt, conversationContext string) (string, error)
}

// NewClient returns the resty-backed client when an API key is set and the
// stub otherwise.
func NewClient(apiKey, baseURL string) LlmClient {
	if apiKey == "" {
		return &stubClient{}
	}
	httpClient := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)
	return &anthropicClient{httpClient: httpClient, baseURL: baseURL}
}

type anthropicClient struct {
	httpClient *resty.Client
	baseURL    string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Chat(ctx context.Context, systemPrompt, conversationContext string) (string, error) {
	reqBody := messageRequest{
		Model:     defaultModel,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []chatMessage{{Role: "user", Content: conversationContext}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.baseURL + "/v1/messages")
	if err != nil {
		return "", fmt.Errorf("llm api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("llm api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from llm")
	}
	return respBody.Content[0].Text, nil
}

// stubClient echoes a canned response. Used when AI_API_KEY is empty.
type stubClient struct{}

func (s *stubClient) Chat(_ context.Context, systemPrompt, conversationContext string) (string, error) {
	zap.L().Info("llm stub called",
		zap.Int("system_prompt_len", len(systemPrompt)),
		zap.Int("context_len", len(conversationContext)))

	return "[AI consultation stub response]\n\n" +
		"Thank you for your question. The service is running in stub mode.\n" +
		"Once a real LLM API is configured you will receive concrete, tailored advice.\n\n" +
		"Your question: " + summarize(conversationContext), nil
}

func summarize(message string) string {
	runes := []rune(message)
	if len(runes) <= 100 {
		return message
	}
	return string(runes[:100]) + "..."
}
