package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// openAIClient speaks the chat-completions wire format. DeepSeek exposes
// the same API under a different base URL.
type openAIClient struct {
	http httpTransport
}

func newOpenAIClient(provider Provider, baseURL, apiKey string, client *http.Client) *openAIClient {
	return &openAIClient{
		http: newHTTPTransport(provider, baseURL, client, map[string]string{
			"Authorization": "Bearer " + apiKey,
		}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type openAIRequest struct {
	Model         string               `json:"model"`
	Messages      []chatMessage        `json:"messages"`
	Stream        bool                 `json:"stream"`
	Temperature   *float32             `json:"temperature,omitempty"`
	MaxTokens     int32                `json:"max_tokens,omitempty"`
	StreamOptions *openAIStreamOptions `json:"stream_options,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Delta   chatMessage `json:"delta"`
	} `json:"choices"`
	Usage *openAIUsage `json:"usage"`
}

func (u *openAIUsage) tokenUsage() *TokenUsage {
	if u == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
}

func buildMessages(req GenerateRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: RoleSystem, Content: req.System})
	}
	return append(messages, chatMessage{Role: RoleUser, Content: req.Prompt})
}

func (c *openAIClient) body(req GenerateRequest, stream bool) openAIRequest {
	body := openAIRequest{
		Model:       req.Model,
		Messages:    buildMessages(req),
		Stream:      stream,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if stream {
		body.StreamOptions = &openAIStreamOptions{IncludeUsage: true}
	}
	return body
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*Completion, error) {
	resp, err := c.http.post(ctx, "/chat/completions", c.body(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", c.http.provider, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%s response contained no choices", c.http.provider)
	}
	return &Completion{
		Text:  decoded.Choices[0].Message.Content,
		Usage: decoded.Usage.tokenUsage(),
	}, nil
}

func (c *openAIClient) Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*Completion, error) {
	resp, err := c.http.post(ctx, "/chat/completions", c.body(req, true))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var text strings.Builder
	out := &Completion{}
	err = scanSSE(resp.Body, func(ev sseEvent) error {
		if ev.Data == "[DONE]" {
			return errStreamDone
		}
		var chunk openAIResponse
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return fmt.Errorf("failed to decode %s stream chunk: %w", c.http.provider, err)
		}
		if chunk.Usage != nil {
			out.Usage = chunk.Usage.tokenUsage()
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			return nil
		}
		delta := chunk.Choices[0].Delta.Content
		text.WriteString(delta)
		return onChunk(delta)
	})
	out.Text = text.String()
	if err != nil && !errors.Is(err, errStreamDone) {
		return out, err
	}
	return out, nil
}
