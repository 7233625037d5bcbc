package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/ingest"
	"resumatch/internal/types"
)

// FileProcessor reads resumes and job postings from disk
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger}
}

// ReadDocument extracts the text of a txt, md, pdf, docx or html file
func (fp *FileProcessor) ReadDocument(filename string) (*ingest.Document, error) {
	doc, err := ingest.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	fp.logger.Debug("Document read", "filename", filename, "kind", doc.Kind, "chars", len(doc.Text))
	return doc, nil
}

// ReadResume loads a structured resume from a JSON file
func (fp *FileProcessor) ReadResume(filename string) (types.ResumeDocument, error) {
	var resume types.ResumeDocument
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".json" {
		return resume, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("resume must be a JSON file, got %s (run 'resumatch parse' to structure a document first)", filename), nil)
	}
	if err := ingest.ValidateInputFile(filename); err != nil {
		return resume, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return resume, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	if err := json.Unmarshal(data, &resume); err != nil {
		return resume, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Invalid resume JSON in %s", filename), err)
	}
	resume.Normalize()
	return resume, nil
}

// ReadJob loads a job posting from any supported document
func (fp *FileProcessor) ReadJob(filename string) (types.JobPosting, error) {
	doc, err := fp.ReadDocument(filename)
	if err != nil {
		return types.JobPosting{}, err
	}
	job := types.JobPosting{Text: doc.Text}
	if err := job.Validate(); err != nil {
		return job, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Invalid job posting %s", filename), err)
	}
	return job, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
