package server

import (
	"net/http"
	"strings"

	"resumatch/internal/config"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware()
	jsonLimit := s.requestSizeLimitMiddleware(s.MaxRequestSize)
	uploadLimit := s.requestSizeLimitMiddleware(s.MaxUploadSize)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(s.authMiddleware(jsonLimit(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("GET /api/config", protected(s.configHandler))
	mux.HandleFunc("POST /api/score", protected(s.scoreHandler))
	mux.HandleFunc("POST /api/prompt", protected(s.promptHandler))
	mux.HandleFunc("POST /api/generate", protected(s.generateHandler))
	mux.HandleFunc("POST /api/rewrite", protected(s.rewriteHandler))
	mux.HandleFunc("POST /api/cover-letter", protected(s.coverLetterHandler))
	mux.HandleFunc("POST /api/parse-resume", protected(s.parseHandler))
	mux.HandleFunc("POST /api/interview-questions", protected(s.interviewHandler))
	mux.HandleFunc("POST /api/extract-resume-text", rateLimit(s.authMiddleware(uploadLimit(s.extractTextHandler))))

	mux.HandleFunc("GET /api/ollama/models", protected(s.ollamaModelsHandler))
	mux.HandleFunc("GET /api/ollama/tags", protected(s.ollamaModelsHandler))
	mux.HandleFunc("GET /api/ollama/show", protected(s.ollamaShowHandler))
	mux.HandleFunc("POST /api/ollama/pull", protected(s.ollamaPullHandler))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", config.MaskKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r),
			"api_key_prefix", config.MaskKey(apiKey))

		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(limit int64) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next(w, r)
		}
	}
}
