package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/ai"
	"resumatch/internal/ats"
	"resumatch/internal/workflow"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type names used as registry keys
const (
	TypeAny        = "any"
	TypeScore      = "ScoreResult"
	TypeScoreBatch = "ScoreBatch"
	TypeRewrite    = "RewriteOutcome"
	TypeParse      = "ParseOutcome"
	TypeText       = "Text"
	TypeInterview  = "InterviewOutcome"
	TypeModels     = "ModelList"
	TypePrompt     = "Prompt"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	for _, format := range []string{"text", "markdown"} {
		md := format == "markdown"
		registry.RegisterFormatter(format, TypeScore, &ScoreFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeScoreBatch, &ScoreBatchFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeRewrite, &RewriteFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeParse, &ParseFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeText, &TextFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeInterview, &InterviewFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypeModels, &ModelListFormatter{Markdown: md})
		registry.RegisterFormatter(format, TypePrompt, &PromptFormatter{})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case ats.Result, *ats.Result:
		return TypeScore
	case []workflow.ScoreReport:
		return TypeScoreBatch
	case *workflow.RewriteOutcome:
		return TypeRewrite
	case *workflow.ParseOutcome:
		return TypeParse
	case *workflow.Text:
		return TypeText
	case *workflow.InterviewOutcome:
		return TypeInterview
	case ai.ModelList:
		return TypeModels
	case string:
		return TypePrompt
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type. HTML characters
// are left unescaped so prompts and resumes read naturally.
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	if s, ok := data.(string); ok {
		data = map[string]string{"prompt": s}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// PromptFormatter prints a composed prompt as is
type PromptFormatter struct{}

func (pf *PromptFormatter) Format(data any) (string, error) {
	s, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", data)
	}
	return s + "\n", nil
}

func (pf *PromptFormatter) SupportedType() string {
	return TypePrompt
}

// heading writes a section title in the text or markdown style
func heading(sb *strings.Builder, markdown bool, title string) {
	if markdown {
		fmt.Fprintf(sb, "## %s\n\n", title)
		return
	}
	fmt.Fprintf(sb, "=== %s ===\n", strings.ToUpper(title))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

var GlobalRegistry = NewFormatterRegistry()
