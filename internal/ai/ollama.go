package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"resumatch/internal/errors"
)

const (
	msgOllamaUnreachable = "Cannot connect to Ollama. Make sure Ollama is running locally (ollama serve)."

	ollamaListTimeout = 3 * time.Second
	ollamaShowTimeout = 5 * time.Second
)

// OllamaClient talks to a local Ollama daemon. Besides generation it
// exposes the model management calls the API proxies.
type OllamaClient struct {
	http httpTransport
}

// NewOllamaClient creates a client for baseURL. A nil client means
// http.DefaultClient.
func NewOllamaClient(baseURL string, client *http.Client) *OllamaClient {
	return &OllamaClient{http: newHTTPTransport(ProviderOllama, baseURL, client, nil)}
}

type ollamaOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
	NumPredict  int32    `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	Error           string      `json:"error"`
	PromptEvalCount int64       `json:"prompt_eval_count"`
	EvalCount       int64       `json:"eval_count"`
}

func (c *OllamaClient) body(req GenerateRequest, stream bool) ollamaChatRequest {
	body := ollamaChatRequest{
		Model:    req.Model,
		Messages: buildMessages(req),
		Stream:   stream,
	}
	if req.Temperature != nil || req.MaxTokens > 0 {
		body.Options = &ollamaOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return body
}

func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*Completion, error) {
	resp, err := c.http.post(ctx, "/api/chat", c.body(req, false))
	if err != nil {
		return nil, ollamaError(err, req.Model)
	}
	defer resp.Body.Close()

	var decoded ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if decoded.Error != "" {
		return nil, ollamaError(&APIError{Provider: ProviderOllama, StatusCode: http.StatusInternalServerError, Message: decoded.Error}, req.Model)
	}
	return &Completion{
		Text:  decoded.Message.Content,
		Usage: usageTotal(decoded.PromptEvalCount, decoded.EvalCount),
	}, nil
}

func (c *OllamaClient) Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*Completion, error) {
	resp, err := c.http.post(ctx, "/api/chat", c.body(req, true))
	if err != nil {
		return nil, ollamaError(err, req.Model)
	}
	defer resp.Body.Close()

	var text strings.Builder
	out := &Completion{}
	err = scanLines(resp.Body, func(line string) error {
		var chunk ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return fmt.Errorf("failed to decode ollama stream line: %w", err)
		}
		if chunk.Error != "" {
			return ollamaError(&APIError{Provider: ProviderOllama, StatusCode: http.StatusInternalServerError, Message: chunk.Error}, req.Model)
		}
		if chunk.Done {
			out.Usage = usageTotal(chunk.PromptEvalCount, chunk.EvalCount)
			return errStreamDone
		}
		if chunk.Message.Content == "" {
			return nil
		}
		text.WriteString(chunk.Message.Content)
		return onChunk(chunk.Message.Content)
	})
	out.Text = text.String()
	if err != nil && !stderrors.Is(err, errStreamDone) {
		return out, err
	}
	return out, nil
}

// ollamaError turns transport failures into the messages users act on
func ollamaError(err error, model string) error {
	if isConnectionRefused(err) {
		return errors.NewNetworkError(errors.ErrCodeProviderUnavailable, msgOllamaUnreachable, err)
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		if apiErr.StatusCode == http.StatusNotFound || (strings.Contains(msg, "model") && strings.Contains(msg, "not found")) {
			return errors.NewAIError(errors.ErrCodeModelNotFound,
				fmt.Sprintf("Ollama model %q is not installed. Run: ollama pull %s", model, model), err).
				WithContext("model", model)
		}
	}
	return err
}

func isConnectionRefused(err error) bool {
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return stderrors.As(err, &opErr) && opErr.Op == "dial"
}
