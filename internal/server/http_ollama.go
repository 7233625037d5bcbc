package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/ingest"
)

// ollamaModelsHandler proxies the daemon's tag list. An unreachable daemon
// yields an empty, unavailable list with status 200.
func (s *Server) ollamaModelsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "ollama_models")
	defer span.End()

	list := s.AI.Ollama().ListModels(ctx)
	span.SetAttributes(attribute.Int("ollama.models", len(list.Models)), attribute.Bool("ollama.available", list.Available))
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) ollamaShowHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "ollama_show")
	defer span.End()

	name := r.URL.Query().Get("name")
	info, err := s.AI.Ollama().ShowModel(ctx, name)
	if err != nil {
		s.fail(w, r, span, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// ollamaPullHandler relays pull progress as server-sent events. A client
// disconnect cancels the upstream download and ends the stream silently.
func (s *Server) ollamaPullHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "ollama_pull")
	defer span.End()

	var req PullRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeErrorResponse(w, "name required", "", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("ollama.model", name))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	send := func(event any) error {
		var buf bytes.Buffer
		buf.WriteString("data: ")
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(event); err != nil {
			return err
		}
		// Encode ends with a newline; one more closes the event.
		buf.WriteString("\n")
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !stderrors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	err := s.AI.Ollama().PullModel(ctx, name, func(progress map[string]any) error {
		return send(progress)
	})
	switch {
	case ctx.Err() != nil || stderrors.Is(err, context.Canceled):
		s.Logger.Info("Model pull cancelled by client", "model", name)
	case err != nil:
		span.RecordError(err)
		s.Logger.Warn("Model pull failed", "model", name, "error", err)
		_ = send(map[string]string{"error": pullErrorMessage(err)})
	default:
		s.Logger.Info("Model pulled", "model", name)
		_ = send(map[string]string{"status": "success"})
	}
}

func pullErrorMessage(err error) string {
	var appErr *resumatchErrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// extractTextHandler pulls plain text out of an uploaded resume
func (s *Server) extractTextHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "extract_resume_text")
	defer span.End()

	if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			writeErrorResponse(w, "File too large", err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		writeErrorResponse(w, "No file uploaded", "", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, "No file uploaded", "", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Failed to read upload", err.Error(), http.StatusInternalServerError)
		return
	}

	doc, err := ingest.FromBytes(buf.Bytes(), header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		span.RecordError(err)
		s.Logger.Warn("Text extraction failed", "file", header.Filename, "error", err)
		status := http.StatusInternalServerError
		var appErr *resumatchErrors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == resumatchErrors.ErrCodeUnsupportedDocument {
			status = http.StatusBadRequest
		}
		writeErrorResponse(w, pullErrorMessage(err), "", status)
		return
	}

	s.Metrics.RecordDocument(ctx, string(doc.Kind))
	span.SetAttributes(attribute.String("document.kind", string(doc.Kind)), attribute.Int("document.chars", len(doc.Text)))
	s.writeJSON(w, http.StatusOK, map[string]string{"text": doc.Text})
}
