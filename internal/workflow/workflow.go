// Package workflow strings the scorer, the prompt composer, the providers
// and the extractor together into the operations the CLI and the HTTP API
// expose.
package workflow

import (
	"context"
	"strings"
	"time"

	"resumatch/internal/ai"
	"resumatch/internal/ats"
	"resumatch/internal/cache"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/extract"
	"resumatch/internal/prompt"
	"resumatch/internal/types"
)

// Generator is the provider dispatch the workflows call
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (*ai.Completion, error)
	Stream(ctx context.Context, req ai.Request, onChunk ai.ChunkFunc) (*ai.Completion, error)
}

// Recorder receives domain events for metrics
type Recorder interface {
	RecordScore(ctx context.Context, total int, grade, role string)
	RecordPrompt(ctx context.Context, kind string)
	RecordExtraction(ctx context.Context, success bool)
	RecordCacheLookup(ctx context.Context, kind string, hit bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordScore(context.Context, int, string, string) {}
func (nopRecorder) RecordPrompt(context.Context, string)             {}
func (nopRecorder) RecordExtraction(context.Context, bool)           {}
func (nopRecorder) RecordCacheLookup(context.Context, string, bool)  {}

// Model selects the provider for one call. Empty fields fall back to the
// operation's configured settings.
type Model struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

func (m Model) request(operation, text string) ai.Request {
	return ai.Request{
		Prompt:    text,
		Provider:  m.Provider,
		Model:     m.Model,
		APIKey:    m.APIKey,
		Operation: operation,
	}
}

// Service runs the workflows
type Service struct {
	generator          Generator
	scorer             ats.Scorer
	recorder           Recorder
	logger             *errors.Logger
	defaultFabrication int
	questions          *cache.Store[types.InterviewQuestion]
	now                func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRecorder sends domain events to r
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates the workflow service. generator may be nil for callers that
// only score and compose prompts.
func New(cfg *config.Config, generator Generator, logger *errors.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Service{
		generator:          generator,
		scorer:             ats.Scorer{MaxJobWords: cfg.Scoring.MaxJobWords},
		recorder:           nopRecorder{},
		logger:             logger,
		defaultFabrication: cfg.AI.DefaultFabricationLevel,
		questions:          cache.NewStore[types.InterviewQuestion]("interview-questions", cfg.Scoring.CacheEntries),
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score runs the deterministic scorer
func (s *Service) Score(ctx context.Context, resume types.ResumeDocument, jobText string) ats.Result {
	result := s.scorer.Score(resume, jobText)
	s.recorder.RecordScore(ctx, result.Total, string(result.Grade), result.Breakdown.RoleAlignment.Detected)
	return result
}

// ScoreReport is one posting's result in a batch
type ScoreReport struct {
	Source string     `json:"source"`
	Result ats.Result `json:"result"`
}

// Prompt composes a prompt without calling a model
func (s *Service) Prompt(ctx context.Context, req prompt.Request) (string, error) {
	if req.Kind == "" || req.Kind == prompt.KindRewrite {
		req.Settings = s.settings(req.Settings)
	}
	text, err := prompt.Compose(req)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), err)
	}
	kind := req.Kind
	if kind == "" {
		kind = prompt.KindRewrite
	}
	s.recorder.RecordPrompt(ctx, string(kind))
	return text, nil
}

// DefaultFabricationLevel is the level callers use when the user gave none
func (s *Service) DefaultFabricationLevel() int {
	return s.defaultFabrication
}

func (s *Service) settings(in prompt.Settings) prompt.Settings {
	in.FabricationLevel = prompt.ClampFabrication(in.FabricationLevel)
	in.Scorer = &s.scorer
	return in
}

func (s *Service) requireGenerator() error {
	if s.generator == nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "no AI provider configured", nil)
	}
	return nil
}

// generate streams when onChunk is set
func (s *Service) generate(ctx context.Context, req ai.Request, onChunk ai.ChunkFunc) (*ai.Completion, error) {
	if err := s.requireGenerator(); err != nil {
		return nil, err
	}
	if onChunk != nil {
		return s.generator.Stream(ctx, req, onChunk)
	}
	return s.generator.Generate(ctx, req)
}

// RewriteInput is everything a rewrite needs
type RewriteInput struct {
	Resume        types.ResumeDocument `json:"resume"`
	Job           types.JobPosting     `json:"job"`
	Settings      prompt.Settings      `json:"settings"`
	UserOverrides string               `json:"userOverrides,omitempty"`
	Model         Model                `json:"model"`
}

// RewriteOutcome is a rewritten resume with the score before and after
type RewriteOutcome struct {
	ChangeLog string                `json:"changeLog"`
	Resume    *types.ResumeDocument `json:"resume,omitempty"`
	Before    ats.Result            `json:"before"`
	After     *ats.Result           `json:"after,omitempty"`
	Usage     *ai.TokenUsage        `json:"usage,omitempty"`
	Cancelled bool                  `json:"cancelled,omitempty"`
}

// Rewrite composes the rewrite directive, runs it, extracts the resume
// from the answer and rescores it. A cancelled generation returns the
// outcome with Cancelled set and no resume.
func (s *Service) Rewrite(ctx context.Context, in RewriteInput, onChunk ai.ChunkFunc) (*RewriteOutcome, error) {
	in.Resume.Normalize()
	before := s.Score(ctx, in.Resume, in.Job.Text)

	settings := s.settings(in.Settings)
	directive := prompt.GenerateRewritePrompt(in.Resume, in.Job, settings, in.UserOverrides)
	s.recorder.RecordPrompt(ctx, string(prompt.KindRewrite))

	completion, err := s.generate(ctx, in.Model.request(config.OpRewrite, directive), onChunk)
	if err != nil {
		return nil, err
	}
	outcome := &RewriteOutcome{Before: before, Usage: completion.Usage}
	if completion.Cancelled {
		outcome.Cancelled = true
		return outcome, nil
	}

	extracted, err := extract.ResumeWithChangeLog(completion.Text)
	s.recorder.RecordExtraction(ctx, err == nil)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeExtractionFailed, err.Error(), err).
			WithContext("response_chars", len(completion.Text))
	}

	extracted.Document.AssignMissingIDs()
	after := s.Score(ctx, *extracted.Document, in.Job.Text)

	outcome.ChangeLog = extracted.ChangeLog
	outcome.Resume = extracted.Document
	outcome.After = &after

	s.logger.Info("Resume rewritten",
		"score_before", before.Total,
		"score_after", after.Total,
		"fabrication_level", settings.FabricationLevel)
	return outcome, nil
}

// ParseInput is plain resume text to structure
type ParseInput struct {
	Text          string `json:"text"`
	UserOverrides string `json:"userOverrides,omitempty"`
	Model         Model  `json:"model"`
}

// ParseOutcome is the structured resume plus any field problems found by
// validation. Problems do not fail the parse; the user fixes them.
type ParseOutcome struct {
	Resume    *types.ResumeDocument `json:"resume"`
	Problems  []string              `json:"problems,omitempty"`
	Usage     *ai.TokenUsage        `json:"usage,omitempty"`
	Cancelled bool                  `json:"cancelled,omitempty"`
}

// Parse asks the model to structure resume text and validates the result
func (s *Service) Parse(ctx context.Context, in ParseInput) (*ParseOutcome, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume text is empty", nil)
	}

	completion, err := s.generate(ctx, in.Model.request(config.OpParse, prompt.GenerateResumeParsePrompt(in.Text, in.UserOverrides)), nil)
	if err != nil {
		return nil, err
	}
	if completion.Cancelled {
		return &ParseOutcome{Cancelled: true}, nil
	}

	doc, err := extract.ResumeFromResponse(completion.Text)
	s.recorder.RecordExtraction(ctx, err == nil)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeExtractionFailed, err.Error(), err)
	}
	doc.AssignMissingIDs()

	outcome := &ParseOutcome{Resume: doc, Usage: completion.Usage}
	if verr := doc.Validate(); verr != nil {
		outcome.Problems = strings.Split(verr.Error(), "; ")
	}
	return outcome, nil
}

// CoverLetterInput selects the resume, the posting and the letter style
type CoverLetterInput struct {
	Resume        types.ResumeDocument       `json:"resume"`
	Job           types.JobPosting           `json:"job"`
	Settings      prompt.CoverLetterSettings `json:"settings"`
	UserOverrides string                     `json:"userOverrides,omitempty"`
	Model         Model                      `json:"model"`
}

// Text is free-form generated output
type Text struct {
	Kind      string         `json:"kind"`
	Text      string         `json:"text"`
	Usage     *ai.TokenUsage `json:"usage,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
}

// CoverLetter writes a cover letter, streaming it when onChunk is set
func (s *Service) CoverLetter(ctx context.Context, in CoverLetterInput, onChunk ai.ChunkFunc) (*Text, error) {
	text := prompt.GenerateCoverLetterPrompt(in.Resume, in.Job, in.Settings, in.UserOverrides)
	s.recorder.RecordPrompt(ctx, string(prompt.KindCoverLetter))

	completion, err := s.generate(ctx, in.Model.request(config.OpCoverLetter, text), onChunk)
	if err != nil {
		return nil, err
	}
	return &Text{
		Kind:      string(prompt.KindCoverLetter),
		Text:      strings.TrimSpace(completion.Text),
		Usage:     completion.Usage,
		Cancelled: completion.Cancelled,
	}, nil
}

// InterviewInput requests questions for a resume/posting pair. More asks
// for another batch even when some are cached.
type InterviewInput struct {
	Resume        types.ResumeDocument `json:"resume"`
	Job           types.JobPosting     `json:"job"`
	UserOverrides string               `json:"userOverrides,omitempty"`
	More          bool                 `json:"more,omitempty"`
	Model         Model                `json:"model"`
}

// InterviewOutcome is every question cached for the pair
type InterviewOutcome struct {
	Key       string                    `json:"key"`
	Items     []types.InterviewQuestion `json:"items"`
	SavedAt   int64                     `json:"savedAt"`
	CachedAgo string                    `json:"cachedAgo"`
	FromCache bool                      `json:"fromCache"`
	Usage     *ai.TokenUsage            `json:"usage,omitempty"`
	Cancelled bool                      `json:"cancelled,omitempty"`
}

// InterviewQuestions returns cached questions for the pair, generating and
// appending a new batch when nothing is cached or More is set.
func (s *Service) InterviewQuestions(ctx context.Context, in InterviewInput) (*InterviewOutcome, error) {
	key := cache.Fingerprint(&in.Resume, &in.Job)

	entry, cached := s.questions.Load(key)
	s.recorder.RecordCacheLookup(ctx, s.questions.Kind(), cached)
	if cached && !in.More {
		return s.interviewOutcome(key, entry.Items, entry.SavedAt, true), nil
	}

	text := prompt.GenerateInterviewQuestionsPrompt(in.Resume, in.Job, in.UserOverrides)
	s.recorder.RecordPrompt(ctx, string(prompt.KindInterviewQuestions))

	completion, err := s.generate(ctx, in.Model.request(config.OpInterview, text), nil)
	if err != nil {
		return nil, err
	}
	if completion.Cancelled {
		out := s.interviewOutcome(key, entry.Items, entry.SavedAt, cached)
		out.Cancelled = true
		return out, nil
	}

	var batch []types.InterviewQuestion
	if err := extract.Value(completion.Text, &batch); err != nil {
		return nil, errors.NewAIError(errors.ErrCodeExtractionFailed,
			"could not find interview questions in the response", err)
	}
	batch = dropBlankQuestions(batch)

	items := s.questions.Append(key, batch)
	saved, _ := s.questions.Load(key)
	out := s.interviewOutcome(key, items, saved.SavedAt, false)
	out.Usage = completion.Usage
	return out, nil
}

// ClearInterviewQuestions forgets the questions cached for the pair
func (s *Service) ClearInterviewQuestions(resume types.ResumeDocument, job types.JobPosting) {
	s.questions.Clear(cache.Fingerprint(&resume, &job))
}

func (s *Service) interviewOutcome(key string, items []types.InterviewQuestion, savedAt int64, fromCache bool) *InterviewOutcome {
	if items == nil {
		items = []types.InterviewQuestion{}
	}
	out := &InterviewOutcome{Key: key, Items: items, SavedAt: savedAt, FromCache: fromCache}
	if savedAt > 0 {
		out.CachedAgo = cache.RelativeTime(savedAt, s.now())
	}
	return out
}

func dropBlankQuestions(in []types.InterviewQuestion) []types.InterviewQuestion {
	out := in[:0]
	for _, q := range in {
		if strings.TrimSpace(q.Question) != "" {
			out = append(out, q)
		}
	}
	return out
}

// CacheStats reports the generation cache sizes
func (s *Service) CacheStats() map[string]any {
	return map[string]any{
		s.questions.Kind(): map[string]any{
			"entries": s.questions.Len(),
		},
	}
}
