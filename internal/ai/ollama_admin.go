package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"resumatch/internal/errors"
)

// OllamaModel is one entry of /api/tags
type OllamaModel struct {
	Name       string         `json:"name"`
	Model      string         `json:"model,omitempty"`
	ModifiedAt string         `json:"modified_at,omitempty"`
	Size       int64          `json:"size,omitempty"`
	Digest     string         `json:"digest,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// ModelList is the answer of ListModels. Available is false when the daemon
// is unreachable or has no models installed.
type ModelList struct {
	Models    []OllamaModel `json:"models"`
	Available bool          `json:"available"`
}

// ListModels returns the installed models. Failures are reported as an
// empty, unavailable list rather than an error.
func (c *OllamaClient) ListModels(ctx context.Context) ModelList {
	ctx, cancel := context.WithTimeout(ctx, ollamaListTimeout)
	defer cancel()

	empty := ModelList{Models: []OllamaModel{}}
	resp, err := c.http.get(ctx, "/api/tags")
	if err != nil {
		return empty
	}
	defer resp.Body.Close()

	var decoded struct {
		Models []OllamaModel `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return empty
	}
	if decoded.Models == nil {
		decoded.Models = []OllamaModel{}
	}
	return ModelList{Models: decoded.Models, Available: len(decoded.Models) > 0}
}

// ShowModel returns the daemon's description of one model
func (c *OllamaClient) ShowModel(ctx context.Context, name string) (map[string]any, error) {
	if name == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "name required", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, ollamaShowTimeout)
	defer cancel()

	resp, err := c.http.post(ctx, "/api/show", map[string]string{"name": name})
	if err != nil {
		var apiErr *APIError
		if stderrors.As(err, &apiErr) {
			return nil, errors.NewAIError(errors.ErrCodeModelNotFound, "Model not found: "+name, err).
				WithContext("model", name)
		}
		return nil, errors.NewNetworkError(errors.ErrCodeProviderUnavailable, "Ollama not reachable", err)
	}
	defer resp.Body.Close()

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeProviderUnavailable, "Ollama not reachable", err)
	}
	return info, nil
}

// PullStatusError is returned by PullModel when the daemon rejects the pull
type PullStatusError struct {
	StatusCode int
}

func (e *PullStatusError) Error() string {
	return fmt.Sprintf("Ollama returned %d", e.StatusCode)
}

// PullModel downloads a model and hands every NDJSON progress object to
// onProgress. Cancelling ctx aborts the download and returns ctx.Err().
func (c *OllamaClient) PullModel(ctx context.Context, name string, onProgress func(map[string]any) error) error {
	if name == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "name required", nil)
	}

	resp, err := c.http.post(ctx, "/api/pull", map[string]any{"name": name, "stream": true})
	if err != nil {
		var apiErr *APIError
		if stderrors.As(err, &apiErr) {
			return &PullStatusError{StatusCode: apiErr.StatusCode}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ollamaError(err, name)
	}
	defer resp.Body.Close()

	err = scanLines(resp.Body, func(line string) error {
		var progress map[string]any
		if err := json.Unmarshal([]byte(line), &progress); err != nil {
			return nil
		}
		return onProgress(progress)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

var _ Generator = (*OllamaClient)(nil)
