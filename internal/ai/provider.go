package ai

import (
	"fmt"
	"strings"

	"resumatch/internal/errors"
)

// Provider is the closed set of supported generation backends
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderDeepSeek  Provider = "deepseek"
)

// Providers lists every provider in display order
func Providers() []Provider {
	return []Provider{ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderDeepSeek}
}

// RequiresKey reports whether the provider is a cloud API needing a key
func (p Provider) RequiresKey() bool {
	return p != ProviderOllama
}

func (p Provider) String() string {
	return string(p)
}

// UnknownProviderError is returned for identifiers outside the closed set
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("Unknown provider %q. Please select a valid provider from the settings.", e.Name)
}

// MissingKeyError is returned when a cloud provider has no request key and
// no configured key.
type MissingKeyError struct {
	Provider Provider
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("No API key provided for %s. Add it in the settings or set it in your .env file.", e.Provider)
}

// ParseProvider maps an identifier to a Provider. The empty string selects
// ollama.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return ProviderOllama, nil
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderDeepSeek:
		return p, nil
	default:
		return "", &UnknownProviderError{Name: name}
	}
}

// Messages returned to API clients for request validation failures
const (
	msgPromptRequired = "Prompt is required and cannot be empty"
	msgModelRequired  = "Model name is required. Please select a model from the settings."
)

// Request is a provider-agnostic generation request as received from a
// caller.
type Request struct {
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Model       string   `json:"model"`
	Provider    string   `json:"provider"`
	APIKey      string   `json:"apiKey,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   int32    `json:"maxTokens,omitempty"`
	// Operation names the config section the request falls back to
	Operation string `json:"-"`
}

// validate checks the fields every provider needs and returns the parsed
// provider.
func (r *Request) validate() (Provider, error) {
	if strings.TrimSpace(r.Prompt) == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, msgPromptRequired, nil)
	}
	provider, err := ParseProvider(r.Provider)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeUnknownProvider, err.Error(), err)
	}
	if strings.TrimSpace(r.Model) == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingModel, msgModelRequired, nil)
	}
	return provider, nil
}
