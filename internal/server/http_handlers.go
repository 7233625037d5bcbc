package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	resumatchErrors "resumatch/internal/errors"
)

// healthHandler reports liveness plus provider and breaker state. Any open
// breaker makes the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumatch",
		"version": s.Version,
	}
	if s.AppConfig != nil {
		response["providers"] = s.AppConfig.KeyAvailability()
	}

	status := http.StatusOK
	if s.AI != nil {
		response["circuit_breakers"] = s.AI.BreakerStats()
		if !s.AI.Healthy() {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, response)
}

// statsHandler provides rate limiter and cache statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_upload_size_bytes":  s.MaxUploadSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.Stats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}
	if s.Workflow != nil {
		response["cache"] = s.Workflow.CacheStats()
	}

	s.writeJSON(w, http.StatusOK, response)
}

// configHandler tells the client which providers have a server-side key
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	if s.AppConfig == nil {
		s.writeJSON(w, http.StatusOK, map[string]bool{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.AppConfig.KeyAvailability())
}

// parseJSONRequest decodes the body into v. A missing Content-Type is
// accepted; any other type than JSON is not.
func parseJSONRequest(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("content-type must be application/json")
		}
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeJSON encodes v without HTML escaping so prompts survive intact
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.Logger.LogError(err, "Failed to encode response")
		writeErrorResponse(w, "Failed to encode response", "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.Logger.Debug("Failed to write response", "error", err)
	}
}

// writeErrorResponse writes the {error, message} body every failure uses
func writeErrorResponse(w http.ResponseWriter, errMsg, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: message})
}

// writeAppError maps an application error onto its HTTP status. Errors
// that are not *AppError become 500.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *resumatchErrors.AppError
	if !stderrors.As(err, &appErr) {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path)
		writeErrorResponse(w, err.Error(), "", http.StatusInternalServerError)
		return
	}

	status := resumatchErrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "code", appErr.Code)
	} else {
		s.Logger.Debug("Request rejected", "endpoint", r.URL.Path, "code", appErr.Code, "error", appErr.Message)
	}
	writeErrorResponse(w, appErr.Message, "", status)
}
