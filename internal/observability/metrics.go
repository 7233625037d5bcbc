package observability

import (
	"context"
	"fmt"

	"resumatch/internal/ai"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the custom instruments of the service
type Metrics struct {
	// AI provider calls
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Scoring and prompt composition
	ATSScores        metric.Int64Counter
	ATSScore         metric.Int64Histogram
	PromptsComposed  metric.Int64Counter
	ResumesExtracted metric.Int64Counter
	DocumentsRead    metric.Int64Counter

	// Infrastructure
	RateLimitHits metric.Int64Counter
	CacheLookups  metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"resumatch_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting for AI providers"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"resumatch_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"resumatch_ai_errors_total",
		metric.WithDescription("Total number of failed AI requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"resumatch_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.ATSScores, err = meter.Int64Counter(
		"resumatch_ats_scores_total",
		metric.WithDescription("Total number of resumes scored against a job posting"),
	); err != nil {
		return nil, fmt.Errorf("failed to create ATS scores metric: %w", err)
	}

	if m.ATSScore, err = meter.Int64Histogram(
		"resumatch_ats_score",
		metric.WithDescription("Distribution of total ATS scores"),
		metric.WithExplicitBucketBoundaries(35, 50, 65, 80, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create ATS score metric: %w", err)
	}

	if m.PromptsComposed, err = meter.Int64Counter(
		"resumatch_prompts_composed_total",
		metric.WithDescription("Total number of prompts composed, by kind"),
	); err != nil {
		return nil, fmt.Errorf("failed to create prompts composed metric: %w", err)
	}

	if m.ResumesExtracted, err = meter.Int64Counter(
		"resumatch_resumes_extracted_total",
		metric.WithDescription("Resume JSON extraction attempts from model output"),
	); err != nil {
		return nil, fmt.Errorf("failed to create resumes extracted metric: %w", err)
	}

	if m.DocumentsRead, err = meter.Int64Counter(
		"resumatch_documents_read_total",
		metric.WithDescription("Uploaded or local documents converted to text, by kind"),
	); err != nil {
		return nil, fmt.Errorf("failed to create documents read metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumatch_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.CacheLookups, err = meter.Int64Counter(
		"resumatch_cache_hits_total",
		metric.WithDescription("Generation cache lookups, labelled hit or miss"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache metric: %w", err)
	}

	return m, nil
}

var _ ai.Recorder = (*Metrics)(nil)

// RecordAICall records duration, outcome and token usage of one generation
func (m *Metrics) RecordAICall(ctx context.Context, stats ai.CallStats) {
	if m == nil {
		return
	}
	outcome := "success"
	switch {
	case stats.Cancelled:
		outcome = "cancelled"
	case stats.Err != nil:
		outcome = "error"
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", stats.Provider),
		attribute.String("model", stats.Model),
		attribute.String("operation", stats.Operation),
		attribute.String("outcome", outcome),
	}

	m.AIProcessingTime.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(attrs...))
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if stats.Err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if stats.Usage == nil {
		return
	}

	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", stats.Usage.InputTokens},
		{"output", stats.Usage.OutputTokens},
		{"total", stats.Usage.TotalTokens},
	} {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordScore records one scorer run
func (m *Metrics) RecordScore(ctx context.Context, total int, grade, role string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("grade", grade),
		attribute.String("role", role),
	)
	m.ATSScores.Add(ctx, 1, attrs)
	m.ATSScore.Record(ctx, int64(total), attrs)
}

// RecordPrompt counts a composed prompt of the given kind
func (m *Metrics) RecordPrompt(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.PromptsComposed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordExtraction counts a resume extraction attempt
func (m *Metrics) RecordExtraction(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.ResumesExtracted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordDocument counts a document converted to text
func (m *Metrics) RecordDocument(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.DocumentsRead.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limiterType string) {
	if m == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter_type", limiterType)))
}

// RecordCacheLookup counts a generation cache lookup
func (m *Metrics) RecordCacheLookup(ctx context.Context, kind string, hit bool) {
	if m == nil {
		return
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("hit", hit),
	))
}
