package ai

import "context"

// Message roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateRequest is a single text-generation call against one model
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature *float32
	MaxTokens   int32
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// Completion is the outcome of a generation. Cancelled is set when the
// caller's context ended the call; Text then holds whatever arrived first.
type Completion struct {
	Text      string      `json:"text"`
	Usage     *TokenUsage `json:"usage,omitempty"`
	Cancelled bool        `json:"cancelled,omitempty"`
}

// ChunkFunc receives streamed text in arrival order. Returning an error
// aborts the stream.
type ChunkFunc func(chunk string) error

// Generator is one provider's transport
type Generator interface {
	// Generate waits for the complete response
	Generate(ctx context.Context, req GenerateRequest) (*Completion, error)
	// Stream forwards partial output to onChunk as it arrives and returns the
	// accumulated completion.
	Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*Completion, error)
}
