package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resumatch/internal/ai"
	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/prompt"
	"resumatch/internal/types"
	"resumatch/internal/workflow"
)

// startSpan opens the request span for an API operation
func (s *Server) startSpan(r *http.Request, operation string) (context.Context, trace.Span) {
	ctx, span := s.Tracer.Start(r.Context(), "api."+operation)
	span.SetAttributes(attribute.String("operation", operation))
	return ctx, span
}

// fail records err on the span and answers with the mapped status
func (s *Server) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var appErr *resumatchErrors.AppError
	if stderrors.As(err, &appErr) {
		span.SetAttributes(attribute.String("error.type", string(appErr.Type)))
	}
	s.writeAppError(w, r, err)
}

// decode parses the body and answers 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, span trace.Span, v any) bool {
	if err := parseJSONRequest(r, v); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// jobPosting wraps and validates the posting text of a request
func jobPosting(text string) (types.JobPosting, error) {
	job := types.JobPosting{Text: strings.TrimSpace(text)}
	if err := job.Validate(); err != nil {
		return job, resumatchErrors.NewValidationError(resumatchErrors.ErrCodeInvalidRequest, err.Error(), err)
	}
	return job, nil
}

func (s *Server) fabrication(level *int) prompt.Settings {
	if level == nil {
		return prompt.Settings{FabricationLevel: s.Workflow.DefaultFabricationLevel()}
	}
	return prompt.Settings{FabricationLevel: *level}
}

func coverLetterSettings(tone, length string) (prompt.CoverLetterSettings, error) {
	t, err := prompt.ParseTone(tone)
	if err != nil {
		return prompt.CoverLetterSettings{}, resumatchErrors.NewValidationError(resumatchErrors.ErrCodeInvalidRequest, err.Error(), err)
	}
	l, err := prompt.ParseLength(length)
	if err != nil {
		return prompt.CoverLetterSettings{}, resumatchErrors.NewValidationError(resumatchErrors.ErrCodeInvalidRequest, err.Error(), err)
	}
	return prompt.CoverLetterSettings{Tone: t, Length: l}, nil
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "score")
	defer span.End()

	var req ScoreRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	job, err := jobPosting(req.JobDescription)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	req.Resume.Normalize()
	result := s.Workflow.Score(ctx, req.Resume, job.Text)
	span.SetAttributes(
		attribute.Int("ats.score", result.Total),
		attribute.String("ats.grade", string(result.Grade)),
	)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) promptHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "prompt")
	defer span.End()

	var req PromptRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	letter, err := coverLetterSettings(req.Tone, req.Length)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	req.Resume.Normalize()
	text, err := s.Workflow.Prompt(ctx, prompt.Request{
		Kind:          prompt.Kind(req.Kind),
		Resume:        req.Resume,
		Job:           types.JobPosting{Text: req.JobDescription},
		Settings:      s.fabrication(req.FabricationLevel),
		CoverLetter:   letter,
		Question:      req.Question,
		UserOverrides: req.UserOverrides,
	})
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.String("prompt.kind", req.Kind), attribute.Int("prompt.chars", len(text)))
	s.writeJSON(w, http.StatusOK, map[string]string{"prompt": text})
}

// generateHandler streams model output as text/plain. Errors raised before
// the first chunk are answered with a status; later ones end the stream.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "generate")
	defer span.End()

	var req ai.Request
	if !s.decode(w, r, span, &req) {
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	span.SetAttributes(attribute.String("ai.provider", req.Provider), attribute.String("ai.model", req.Model))

	sw := newStreamWriter(w, "text/plain; charset=utf-8")
	completion, err := s.AI.Stream(ctx, req, sw.WriteChunk)
	if err != nil {
		if sw.started {
			span.RecordError(err)
			s.Logger.LogError(err, "Generation failed mid-stream", "provider", req.Provider, "model", req.Model)
			return
		}
		var appErr *resumatchErrors.AppError
		if !stderrors.As(err, &appErr) {
			span.RecordError(err)
			s.Logger.LogError(err, "Generation failed", "provider", req.Provider, "model", req.Model)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.fail(w, r, span, err)
		return
	}

	sw.start()
	if completion.Usage != nil {
		span.SetAttributes(attribute.Int64("ai.tokens.total", completion.Usage.TotalTokens))
	}
	span.SetAttributes(attribute.Bool("cancelled", completion.Cancelled))
}

func (s *Server) rewriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "rewrite")
	defer span.End()

	var req RewriteRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	job, err := jobPosting(req.JobDescription)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	out, err := s.Workflow.Rewrite(ctx, workflow.RewriteInput{
		Resume:        req.Resume,
		Job:           job,
		Settings:      s.fabrication(req.FabricationLevel),
		UserOverrides: req.UserOverrides,
		Model:         req.Model,
	}, nil)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	span.SetAttributes(attribute.Int("ats.score_before", out.Before.Total))
	if out.After != nil {
		span.SetAttributes(attribute.Int("ats.score_after", out.After.Total))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) coverLetterHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "cover_letter")
	defer span.End()

	var req CoverLetterRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	job, err := jobPosting(req.JobDescription)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	settings, err := coverLetterSettings(req.Tone, req.Length)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	req.Resume.Normalize()
	out, err := s.Workflow.CoverLetter(ctx, workflow.CoverLetterInput{
		Resume:        req.Resume,
		Job:           job,
		Settings:      settings,
		UserOverrides: req.UserOverrides,
		Model:         req.Model,
	}, nil)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "parse")
	defer span.End()

	var req ParseRequest
	if !s.decode(w, r, span, &req) {
		return
	}

	out, err := s.Workflow.Parse(ctx, workflow.ParseInput{
		Text:          req.Text,
		UserOverrides: req.UserOverrides,
		Model:         req.Model,
	})
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.Int("parse.problems", len(out.Problems)))
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) interviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "interview_questions")
	defer span.End()

	var req InterviewRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	job, err := jobPosting(req.JobDescription)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}

	req.Resume.Normalize()
	if req.Clear {
		s.Workflow.ClearInterviewQuestions(req.Resume, job)
		s.writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
		return
	}

	out, err := s.Workflow.InterviewQuestions(ctx, workflow.InterviewInput{
		Resume:        req.Resume,
		Job:           job,
		UserOverrides: req.UserOverrides,
		More:          req.More,
		Model:         req.Model,
	})
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	span.SetAttributes(
		attribute.Bool("cache.hit", out.FromCache),
		attribute.Int("interview.questions", len(out.Items)),
	)
	s.writeJSON(w, http.StatusOK, out)
}

// streamWriter defers the 200 header until the first chunk so earlier
// failures can still pick their status.
type streamWriter struct {
	w           http.ResponseWriter
	rc          *http.ResponseController
	contentType string
	started     bool
}

func newStreamWriter(w http.ResponseWriter, contentType string) *streamWriter {
	return &streamWriter{w: w, rc: http.NewResponseController(w), contentType: contentType}
}

func (sw *streamWriter) start() {
	if sw.started {
		return
	}
	sw.started = true
	sw.w.Header().Set("Content-Type", sw.contentType)
	sw.w.Header().Set("Cache-Control", "no-cache")
	sw.w.WriteHeader(http.StatusOK)
}

// WriteChunk sends one chunk and flushes it to the client
func (sw *streamWriter) WriteChunk(chunk string) error {
	sw.start()
	if _, err := sw.w.Write([]byte(chunk)); err != nil {
		return err
	}
	if err := sw.rc.Flush(); err != nil && !stderrors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
