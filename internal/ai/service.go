package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CallStats describes one finished generation for metrics
type CallStats struct {
	Provider  string
	Model     string
	Operation string
	Duration  time.Duration
	Usage     *TokenUsage
	Err       error
	Cancelled bool
}

// Recorder receives a CallStats after every generation
type Recorder interface {
	RecordAICall(ctx context.Context, stats CallStats)
}

// Service dispatches generation requests to the selected provider with
// retry, a per-provider circuit breaker and tracing.
type Service struct {
	cfg        *config.Config
	httpClient *http.Client
	ollama     *OllamaClient
	generators map[Provider]Generator
	recorder   Recorder
	logger     *errors.Logger
	baseDelay  time.Duration

	mu       sync.Mutex
	breakers map[Provider]*Breaker
}

// Option configures a Service
type Option func(*Service)

// WithRecorder reports every call to r
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithHTTPClient replaces the client used for provider calls
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.httpClient = c }
}

// WithGenerator routes a provider to g instead of its HTTP client
func WithGenerator(p Provider, g Generator) Option {
	return func(s *Service) { s.generators[p] = g }
}

// WithRetryDelay sets the base backoff between attempts
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) { s.baseDelay = d }
}

// NewService creates the dispatcher. Provider clients are built per call
// because the key may come with the request.
func NewService(cfg *config.Config, logger *errors.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		generators: make(map[Provider]Generator),
		logger:     logger,
		baseDelay:  time.Second,
		breakers:   make(map[Provider]*Breaker),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ollama = NewOllamaClient(cfg.AI.Endpoints.Ollama, s.httpClient)

	logger.Debug("Initializing AI service",
		"default_provider", cfg.AI.Provider,
		"default_model", cfg.AI.Model,
		"timeout", cfg.AI.Timeout,
		"max_retries", cfg.AI.MaxRetries,
		"circuit_breaker", cfg.AI.CircuitBreaker.Enabled)
	return s
}

// Ollama returns the client for the local daemon's management calls
func (s *Service) Ollama() *OllamaClient {
	return s.ollama
}

// call is a validated request bound to its generator
type call struct {
	provider  Provider
	generator Generator
	request   GenerateRequest
	operation config.ResolvedOperation
}

// prepare validates req and resolves provider, model, key and operation
// settings. Operation settings fill only the fields the caller left empty.
func (s *Service) prepare(ctx context.Context, req Request) (*call, error) {
	op := s.cfg.Operation(req.Operation)
	if req.Operation != "" {
		if req.Provider == "" {
			req.Provider = op.Provider
		}
		if req.Model == "" {
			req.Model = op.Model
		}
		if req.System == "" {
			req.System = op.SystemPrompt
		}
	}

	provider, err := req.validate()
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = s.cfg.ProviderKey(provider.String())
	}
	if provider.RequiresKey() && key == "" {
		missing := &MissingKeyError{Provider: provider}
		return nil, errors.NewValidationError(errors.ErrCodeMissingAPIKey, missing.Error(), missing)
	}

	generator, err := s.generator(ctx, provider, key)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("Failed to create %s client", provider), err)
	}

	temperature := req.Temperature
	if temperature == nil && op.Temperature > 0 {
		t := op.Temperature
		temperature = &t
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = op.MaxTokens
	}

	return &call{
		provider:  provider,
		generator: generator,
		operation: op,
		request: GenerateRequest{
			Model:       strings.TrimSpace(req.Model),
			System:      req.System,
			Prompt:      req.Prompt,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	}, nil
}

func (s *Service) generator(ctx context.Context, provider Provider, key string) (Generator, error) {
	if g, ok := s.generators[provider]; ok {
		return g, nil
	}
	endpoints := s.cfg.AI.Endpoints
	switch provider {
	case ProviderOllama:
		return s.ollama, nil
	case ProviderOpenAI:
		return newOpenAIClient(provider, endpoints.OpenAI, key, s.httpClient), nil
	case ProviderDeepSeek:
		return newOpenAIClient(provider, endpoints.DeepSeek, key, s.httpClient), nil
	case ProviderAnthropic:
		return newAnthropicClient(endpoints.Anthropic, key, s.httpClient), nil
	case ProviderGoogle:
		return newGoogleClient(ctx, key, endpoints.Google, s.httpClient)
	}
	return nil, &UnknownProviderError{Name: provider.String()}
}

func (s *Service) breaker(provider Provider) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[provider]
	if !ok {
		b = NewBreaker(provider, s.cfg.AI.CircuitBreaker, s.logger)
		s.breakers[provider] = b
	}
	return b
}

// Generate waits for the complete response. A call ended by the caller's
// context returns a cancelled Completion and no error.
func (s *Service) Generate(ctx context.Context, req Request) (*Completion, error) {
	c, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, c, "generate", nil, func(ctx context.Context) (*Completion, error) {
		return c.generator.Generate(ctx, c.request)
	})
}

// Stream forwards output to onChunk as it arrives. Failed attempts are
// retried only while nothing has been forwarded.
func (s *Service) Stream(ctx context.Context, req Request, onChunk ChunkFunc) (*Completion, error) {
	c, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	emitted := false
	forward := func(chunk string) error {
		emitted = true
		return onChunk(chunk)
	}
	retryable := func() bool { return !emitted }

	return s.execute(ctx, c, "stream", retryable, func(ctx context.Context) (*Completion, error) {
		return c.generator.Stream(ctx, c.request, forward)
	})
}

func (s *Service) execute(ctx context.Context, c *call, mode string, retryable func() bool, fn func(context.Context) (*Completion, error)) (*Completion, error) {
	tracer := otel.Tracer("resumatch.ai")
	ctx, span := tracer.Start(ctx, "ai."+mode)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", c.provider.String()),
		attribute.String("ai.model", c.request.Model),
		attribute.String("ai.operation", c.operation.Name),
	)
	if c.request.Temperature != nil {
		span.SetAttributes(attribute.Float64("ai.temperature", float64(*c.request.Temperature)))
	}

	callCtx := ctx
	if c.operation.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.operation.Timeout)
		defer cancel()
	}

	policy := retryPolicy{maxRetries: c.operation.MaxRetries, baseDelay: s.baseDelay, logger: s.logger}
	started := time.Now()
	out, err := s.breaker(c.provider).Execute(func() (*Completion, error) {
		return run(callCtx, policy, c.provider.String()+"."+mode, retryable, func() (*Completion, error) {
			return fn(callCtx)
		})
	})

	stats := CallStats{
		Provider:  c.provider.String(),
		Model:     c.request.Model,
		Operation: c.operation.Name,
		Duration:  time.Since(started),
	}

	if ctx.Err() != nil {
		if out == nil {
			out = &Completion{}
		}
		out.Cancelled = true
		stats.Cancelled = true
		stats.Usage = out.Usage
		s.record(ctx, stats)
		span.SetAttributes(attribute.Bool("cancelled", true))
		s.logger.Info("AI generation cancelled",
			"provider", c.provider,
			"model", c.request.Model,
			"received_chars", len(out.Text))
		return out, nil
	}

	if err != nil {
		err = s.classify(callCtx, c, err)
		stats.Err = err
		s.record(ctx, stats)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	stats.Usage = out.Usage
	s.record(ctx, stats)
	if out.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", out.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", out.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", out.Usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return out, nil
}

// classify converts provider failures into AppErrors. Errors that are
// already AppErrors pass through.
func (s *Service) classify(callCtx context.Context, c *call, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return errors.NewAIError(errors.ErrCodeAITimeout,
			fmt.Sprintf("%s did not respond within %s", c.provider, c.operation.Timeout), err)
	}
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.NewNetworkError(errors.ErrCodeProviderUnavailable,
			fmt.Sprintf("%s is temporarily unavailable after repeated failures", c.provider), err)
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return errors.NewAIError(errors.ErrCodeAIServiceFailed, apiErr.Error(), err).
			WithContext("status", apiErr.StatusCode)
	}
	return errors.NewAIError(errors.ErrCodeAIServiceFailed,
		fmt.Sprintf("Failed to generate content with %s", c.provider), err)
}

func (s *Service) record(ctx context.Context, stats CallStats) {
	if s.recorder != nil {
		s.recorder.RecordAICall(ctx, stats)
	}
}

// BreakerStats returns the state of every breaker created so far
func (s *Service) BreakerStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make(map[string]any, len(s.breakers))
	for provider, b := range s.breakers {
		stats[provider.String()] = b.Stats()
	}
	return stats
}

// Healthy reports whether every breaker is closed
func (s *Service) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.breakers {
		if !b.IsHealthy() {
			return false
		}
	}
	return true
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled)
}
