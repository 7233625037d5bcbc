package ai

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// googleClient uses the Gemini API through the genai SDK
type googleClient struct {
	client *genai.Client
}

func newGoogleClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*googleClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &googleClient{client: client}, nil
}

func (g *googleClient) config(req GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	return cfg
}

func (g *googleClient) Generate(ctx context.Context, req GenerateRequest) (*Completion, error) {
	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), g.config(req))
	if err != nil {
		return nil, err
	}
	return &Completion{Text: result.Text(), Usage: extractTokenUsage(result)}, nil
}

func (g *googleClient) Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*Completion, error) {
	var text strings.Builder
	out := &Completion{}

	for result, err := range g.client.Models.GenerateContentStream(ctx, req.Model, genai.Text(req.Prompt), g.config(req)) {
		if err != nil {
			out.Text = text.String()
			return out, err
		}
		if usage := extractTokenUsage(result); usage != nil {
			out.Usage = usage
		}
		chunk := result.Text()
		if chunk == "" {
			continue
		}
		text.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			out.Text = text.String()
			return out, err
		}
	}
	out.Text = text.String()
	return out, nil
}

func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
