package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicVersion = "2023-06-01"
	// the Messages API rejects requests without max_tokens
	anthropicDefaultMaxTokens = 4096
)

type anthropicClient struct {
	http httpTransport
}

func newAnthropicClient(baseURL, apiKey string, client *http.Client) *anthropicClient {
	return &anthropicClient{
		http: newHTTPTransport(ProviderAnthropic, baseURL, client, map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": anthropicVersion,
		}),
	}
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int32         `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage anthropicUsage `json:"usage"`
}

// anthropicEvent covers the stream event shapes we read
type anthropicEvent struct {
	Type    string `json:"type"`
	Message struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Usage *anthropicUsage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) body(req GenerateRequest, stream bool) anthropicRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	return anthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []chatMessage{{Role: RoleUser, Content: req.Prompt}},
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

func usageTotal(input, output int64) *TokenUsage {
	return &TokenUsage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*Completion, error) {
	resp, err := c.http.post(ctx, "/messages", c.body(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &Completion{
		Text:  text.String(),
		Usage: usageTotal(decoded.Usage.InputTokens, decoded.Usage.OutputTokens),
	}, nil
}

func (c *anthropicClient) Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*Completion, error) {
	resp, err := c.http.post(ctx, "/messages", c.body(req, true))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var text strings.Builder
	var input, output int64

	err = scanSSE(resp.Body, func(ev sseEvent) error {
		var event anthropicEvent
		if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
			return fmt.Errorf("failed to decode anthropic stream event: %w", err)
		}
		switch event.Type {
		case "message_start":
			input = event.Message.Usage.InputTokens
		case "content_block_delta":
			if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
				return nil
			}
			text.WriteString(event.Delta.Text)
			return onChunk(event.Delta.Text)
		case "message_delta":
			if event.Usage != nil {
				output = event.Usage.OutputTokens
			}
		case "error":
			msg := "stream error"
			if event.Error != nil {
				msg = event.Error.Message
			}
			return &APIError{Provider: ProviderAnthropic, StatusCode: http.StatusInternalServerError, Message: msg}
		}
		return nil
	})

	out := &Completion{Text: text.String(), Usage: usageTotal(input, output)}
	if err != nil {
		return out, err
	}
	return out, nil
}
