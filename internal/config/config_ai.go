package config

import "time"

// Operation names used for per-operation AI overrides
const (
	OpRewrite     = "rewrite"
	OpCoverLetter = "coverLetter"
	OpParse       = "parse"
	OpInterview   = "interview"
)

// OperationAIConfig holds AI configuration for specific operations. Unset
// fields fall back to the global ai section.
type OperationAIConfig struct {
	Provider         string         `mapstructure:"provider"`
	Model            string         `mapstructure:"model"`
	Timeout          *time.Duration `mapstructure:"timeout"`
	MaxRetries       *int           `mapstructure:"maxRetries"`
	Temperature      *float32       `mapstructure:"temperature"`
	MaxTokens        *int32         `mapstructure:"maxTokens"`
	SystemPrompt     string         `mapstructure:"systemPrompt"`
	SystemPromptFile string         `mapstructure:"systemPromptFile"`
}

// ResolvedOperation is an operation's effective settings after fallback
type ResolvedOperation struct {
	Name         string
	Provider     string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	Temperature  float32
	MaxTokens    int32
	SystemPrompt string
}

func (c *Config) operations() map[string]*OperationAIConfig {
	return map[string]*OperationAIConfig{
		OpRewrite:     &c.AI.Rewrite,
		OpCoverLetter: &c.AI.CoverLetter,
		OpParse:       &c.AI.Parse,
		OpInterview:   &c.AI.Interview,
	}
}

// Operation returns the effective AI settings for the named operation.
// Unknown names resolve to the global settings.
func (c *Config) Operation(name string) ResolvedOperation {
	resolved := ResolvedOperation{
		Name:        name,
		Provider:    c.AI.Provider,
		Model:       c.AI.Model,
		Timeout:     c.AI.Timeout,
		MaxRetries:  c.AI.MaxRetries,
		Temperature: c.AI.Temperature,
		MaxTokens:   c.AI.MaxTokens,
	}

	op, ok := c.operations()[name]
	if !ok {
		return resolved
	}
	if op.Provider != "" {
		resolved.Provider = op.Provider
	}
	if op.Model != "" {
		resolved.Model = op.Model
	}
	if op.Timeout != nil {
		resolved.Timeout = *op.Timeout
	}
	if op.MaxRetries != nil {
		resolved.MaxRetries = *op.MaxRetries
	}
	if op.Temperature != nil {
		resolved.Temperature = *op.Temperature
	}
	if op.MaxTokens != nil {
		resolved.MaxTokens = *op.MaxTokens
	}
	resolved.SystemPrompt = op.SystemPrompt
	if loaded := systemPrompts.get(name); loaded != "" {
		resolved.SystemPrompt = loaded
	}
	return resolved
}

// ProviderKey returns the configured server-side key for a provider
func (c *Config) ProviderKey(provider string) string {
	switch provider {
	case "openai":
		return c.AI.Keys.OpenAI
	case "anthropic":
		return c.AI.Keys.Anthropic
	case "google":
		return c.AI.Keys.Google
	case "deepseek":
		return c.AI.Keys.DeepSeek
	}
	return ""
}

// KeyAvailability reports which cloud providers have a server-side key,
// never the key values.
func (c *Config) KeyAvailability() map[string]bool {
	return map[string]bool{
		"openai":    c.AI.Keys.OpenAI != "",
		"anthropic": c.AI.Keys.Anthropic != "",
		"google":    c.AI.Keys.Google != "",
		"deepseek":  c.AI.Keys.DeepSeek != "",
	}
}
