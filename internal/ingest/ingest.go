// Package ingest turns uploaded resumes and job postings into plain text.
//
// Supported inputs are plain text and markdown, PDF, DOCX and HTML. The
// document kind is chosen from the MIME type first and the file extension
// second.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumatch/internal/errors"
)

// Kind identifies a supported input format
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindHTML Kind = "html"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML = "text/html"
	mimeText = "text/plain"
)

// MaxDocumentSize bounds what ReadFile will load.
const MaxDocumentSize = 10 * 1024 * 1024

// Document is extracted text plus the format it came from.
type Document struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
}

// IsTextFile reports whether filename has a plain-text extension
func IsTextFile(filename string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(filename))]
}

// DetectKind picks a Kind from the MIME type, falling back to the extension.
func DetectKind(filename, mimeType string) (Kind, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimePDF:
		return KindPDF, nil
	case mimeDOCX:
		return KindDOCX, nil
	case mimeHTML, "application/xhtml+xml":
		return KindHTML, nil
	case mimeText, "text/markdown":
		return KindText, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return KindPDF, nil
	case ext == ".docx":
		return KindDOCX, nil
	case ext == ".html" || ext == ".htm":
		return KindHTML, nil
	case textExtensions[ext]:
		return KindText, nil
	}

	return "", errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
		fmt.Sprintf("unsupported document type (name %q, type %q)", filename, mimeType), nil)
}

// ValidateInputFile checks that path exists, is a regular file and is not
// too large to load.
func ValidateInputFile(path string) error {
	if path == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "input file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound, "file does not exist", err).WithContext("path", path)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot access file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "path is a directory, not a file", nil).WithContext("path", path)
	}
	if info.Size() > MaxDocumentSize {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("file is %s, larger than the %s limit", FormatFileSize(info.Size()), FormatFileSize(MaxDocumentSize)), nil).
			WithContext("path", path)
	}
	return nil
}

// ReadFile loads and extracts the document at path.
func ReadFile(path string) (*Document, error) {
	if err := ValidateInputFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read file", err).WithContext("path", path)
	}
	return FromBytes(data, filepath.Base(path), "")
}

// FromBytes extracts text from an in-memory upload.
func FromBytes(data []byte, filename, mimeType string) (*Document, error) {
	kind, err := DetectKind(filename, mimeType)
	if err != nil {
		return nil, err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	case KindHTML:
		text, err = extractHTML(bytes.NewReader(data))
	default:
		text = string(data)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("failed to extract text from %s document", kind), err).WithContext("file", filename)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "document contains no extractable text", nil).
			WithContext("file", filename)
	}
	return &Document{Text: text, Kind: kind}, nil
}

// FormatFileSize renders a byte count with a binary unit
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
