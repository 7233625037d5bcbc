package server

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/types"
	"resumatch/internal/workflow"
)

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Resume         types.ResumeDocument `json:"resume"`
	JobDescription string               `json:"jobDescription"`
}

// PromptRequest is the body of POST /api/prompt. A nil FabricationLevel
// selects the configured default.
type PromptRequest struct {
	Kind             string               `json:"kind"`
	Resume           types.ResumeDocument `json:"resume"`
	JobDescription   string               `json:"jobDescription"`
	FabricationLevel *int                 `json:"fabricationLevel,omitempty"`
	UserOverrides    string               `json:"userOverrides,omitempty"`
	Tone             string               `json:"tone,omitempty"`
	Length           string               `json:"length,omitempty"`
	Question         string               `json:"question,omitempty"`
}

// RewriteRequest is the body of POST /api/rewrite
type RewriteRequest struct {
	Resume           types.ResumeDocument `json:"resume"`
	JobDescription   string               `json:"jobDescription"`
	FabricationLevel *int                 `json:"fabricationLevel,omitempty"`
	UserOverrides    string               `json:"userOverrides,omitempty"`
	workflow.Model
}

// CoverLetterRequest is the body of POST /api/cover-letter
type CoverLetterRequest struct {
	Resume         types.ResumeDocument `json:"resume"`
	JobDescription string               `json:"jobDescription"`
	Tone           string               `json:"tone,omitempty"`
	Length         string               `json:"length,omitempty"`
	UserOverrides  string               `json:"userOverrides,omitempty"`
	workflow.Model
}

// ParseRequest is the body of POST /api/parse-resume
type ParseRequest struct {
	Text          string `json:"text"`
	UserOverrides string `json:"userOverrides,omitempty"`
	workflow.Model
}

// InterviewRequest is the body of POST /api/interview-questions
type InterviewRequest struct {
	Resume         types.ResumeDocument `json:"resume"`
	JobDescription string               `json:"jobDescription"`
	UserOverrides  string               `json:"userOverrides,omitempty"`
	More           bool                 `json:"more,omitempty"`
	Clear          bool                 `json:"clear,omitempty"`
	workflow.Model
}

// PullRequest is the body of POST /api/ollama/pull
type PullRequest struct {
	Name string `json:"name"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limits. Uploads get their own, larger bound.
	MaxRequestSize int64
	MaxUploadSize  int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	AI            *ai.Service
	Workflow      *workflow.Service
	Observability *observability.Manager
	Metrics       *observability.Metrics
	Tracer        trace.Tracer

	Logger *resumatchErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxUploadSize  int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the services the handlers call. Observability may be
// nil, which disables tracing and metrics.
type Dependencies struct {
	AI            *ai.Service
	Workflow      *workflow.Service
	Observability *observability.Manager
}

// NewServerConfig derives the server settings from the application config
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		MaxUploadSize:  cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumatchErrors.Logger) *Server {
	if logger == nil {
		logger = resumatchErrors.Discard()
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, cfg.RateLimit.Window, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxUploadSize:  cfg.MaxUploadSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AI:             deps.AI,
		Workflow:       deps.Workflow,
		Observability:  deps.Observability,
		Tracer:         noop.NewTracerProvider().Tracer("resumatch.api"),
		Logger:         logger,
	}
	if deps.Observability != nil {
		s.Metrics = deps.Observability.Metrics()
		s.Tracer = deps.Observability.Tracer("resumatch.api")
	}
	if s.MaxUploadSize <= 0 {
		s.MaxUploadSize = s.MaxRequestSize
	}
	return s
}
