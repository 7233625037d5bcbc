package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NewNetworkError(ErrCodeProviderUnavailable, "ollama not reachable", cause)

	if got := err.Error(); got != "PROVIDER_UNAVAILABLE: ollama not reachable (caused by: dial tcp: refused)" {
		t.Errorf("unexpected message: %s", got)
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap should return the cause")
	}

	bare := NewValidationError(ErrCodeInvalidRequest, "bad", nil)
	if got := bare.Error(); got != "INVALID_REQUEST: bad" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrCodeUnknownProvider, http.StatusBadRequest},
		{ErrCodeMissingModel, http.StatusBadRequest},
		{ErrCodeMissingAPIKey, http.StatusUnauthorized},
		{ErrCodeModelNotFound, http.StatusNotFound},
		{ErrCodeProviderUnavailable, http.StatusServiceUnavailable},
		{ErrCodeExtractionFailed, http.StatusUnprocessableEntity},
		{ErrCodeAIServiceFailed, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestLogErrorExpandsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewAIError(ErrCodeModelNotFound, "model missing", nil).WithContext("model", "llama3")
	logger.LogError(err, "generation failed", "endpoint", "/api/generate")

	var entry map[string]any
	if jerr := json.Unmarshal(buf.Bytes(), &entry); jerr != nil {
		t.Fatalf("log line is not JSON: %v", jerr)
	}
	for key, want := range map[string]string{
		"msg":        "generation failed",
		"error_code": ErrCodeModelNotFound,
		"model":      "llama3",
		"endpoint":   "/api/generate",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestLogErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	logger.LogError(fmt.Errorf("boom"), "failed")

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected plain error attribute, got %s", buf.String())
	}
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q) returned error: %v", level, err)
		}
	}
	if _, err := New("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
