package formatters

import (
	"fmt"
	"strings"

	"resumatch/internal/ai"
	"resumatch/internal/ingest"
	"resumatch/internal/workflow"
)

// RewriteFormatter renders the change log, the before/after scores and the
// rewritten resume as JSON.
type RewriteFormatter struct {
	Markdown bool
}

func (rf *RewriteFormatter) Format(data any) (string, error) {
	out, ok := data.(*workflow.RewriteOutcome)
	if !ok || out == nil {
		return "", fmt.Errorf("expected *workflow.RewriteOutcome, got %T", data)
	}

	var sb strings.Builder
	if out.Cancelled {
		sb.WriteString("Rewrite cancelled before the model finished.\n")
		return sb.String(), nil
	}

	heading(&sb, rf.Markdown, "Change Log")
	sb.WriteString(strings.TrimSpace(out.ChangeLog))
	sb.WriteString("\n\n")

	heading(&sb, rf.Markdown, "ATS Score")
	if out.After != nil {
		fmt.Fprintf(&sb, "Before: %d (%s)  After: %d (%s)  Change: %+d\n\n",
			out.Before.Total, out.Before.Grade, out.After.Total, out.After.Grade, out.After.Total-out.Before.Total)
	} else {
		fmt.Fprintf(&sb, "Before: %d (%s)\n\n", out.Before.Total, out.Before.Grade)
	}

	if out.Resume != nil {
		resume, err := (&JSONFormatter{}).Format(out.Resume)
		if err != nil {
			return "", err
		}
		heading(&sb, rf.Markdown, "Rewritten Resume")
		writeCode(&sb, rf.Markdown, resume)
	}
	writeUsage(&sb, out.Usage)
	return sb.String(), nil
}

func (rf *RewriteFormatter) SupportedType() string {
	return TypeRewrite
}

// ParseFormatter renders a parsed resume with its validation problems
type ParseFormatter struct {
	Markdown bool
}

func (pf *ParseFormatter) Format(data any) (string, error) {
	out, ok := data.(*workflow.ParseOutcome)
	if !ok || out == nil {
		return "", fmt.Errorf("expected *workflow.ParseOutcome, got %T", data)
	}

	var sb strings.Builder
	if out.Cancelled || out.Resume == nil {
		sb.WriteString("Parse cancelled before the model finished.\n")
		return sb.String(), nil
	}

	if len(out.Problems) > 0 {
		heading(&sb, pf.Markdown, "Fields To Review")
		for _, p := range out.Problems {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}

	resume, err := (&JSONFormatter{}).Format(out.Resume)
	if err != nil {
		return "", err
	}
	heading(&sb, pf.Markdown, "Resume")
	writeCode(&sb, pf.Markdown, resume)
	writeUsage(&sb, out.Usage)
	return sb.String(), nil
}

func (pf *ParseFormatter) SupportedType() string {
	return TypeParse
}

// TextFormatter renders free-form output such as a cover letter
type TextFormatter struct {
	Markdown bool
}

func (tf *TextFormatter) Format(data any) (string, error) {
	out, ok := data.(*workflow.Text)
	if !ok || out == nil {
		return "", fmt.Errorf("expected *workflow.Text, got %T", data)
	}

	var sb strings.Builder
	heading(&sb, tf.Markdown, titleCase(out.Kind))
	sb.WriteString(out.Text)
	sb.WriteString("\n")
	if out.Cancelled {
		sb.WriteString("\n(cancelled)\n")
	}
	writeUsage(&sb, out.Usage)
	return sb.String(), nil
}

func (tf *TextFormatter) SupportedType() string {
	return TypeText
}

// InterviewFormatter numbers the cached interview questions
type InterviewFormatter struct {
	Markdown bool
}

func (inf *InterviewFormatter) Format(data any) (string, error) {
	out, ok := data.(*workflow.InterviewOutcome)
	if !ok || out == nil {
		return "", fmt.Errorf("expected *workflow.InterviewOutcome, got %T", data)
	}

	var sb strings.Builder
	heading(&sb, inf.Markdown, "Interview Questions")
	if out.FromCache {
		fmt.Fprintf(&sb, "(cached %s)\n\n", out.CachedAgo)
	}
	for i, q := range out.Items {
		if inf.Markdown {
			fmt.Fprintf(&sb, "%d. **%s** _(%s)_  \n   %s\n", i+1, q.Question, q.Type, q.Reasoning)
		} else {
			fmt.Fprintf(&sb, "%d. [%s] %s\n   %s\n", i+1, q.Type, q.Question, q.Reasoning)
		}
	}
	writeUsage(&sb, out.Usage)
	return sb.String(), nil
}

func (inf *InterviewFormatter) SupportedType() string {
	return TypeInterview
}

// ModelListFormatter lists locally installed Ollama models
type ModelListFormatter struct {
	Markdown bool
}

func (mf *ModelListFormatter) Format(data any) (string, error) {
	list, ok := data.(ai.ModelList)
	if !ok {
		return "", fmt.Errorf("expected ai.ModelList, got %T", data)
	}

	var sb strings.Builder
	heading(&sb, mf.Markdown, "Ollama Models")
	if !list.Available {
		sb.WriteString("Ollama is not reachable.\n")
		return sb.String(), nil
	}
	if len(list.Models) == 0 {
		sb.WriteString("No models installed. Run: ollama pull <model>\n")
		return sb.String(), nil
	}
	for _, m := range list.Models {
		prefix := "  "
		if mf.Markdown {
			prefix = "- "
		}
		fmt.Fprintf(&sb, "%s%s (%s)\n", prefix, m.Name, ingest.FormatFileSize(m.Size))
	}
	return sb.String(), nil
}

func (mf *ModelListFormatter) SupportedType() string {
	return TypeModels
}

func writeCode(sb *strings.Builder, markdown bool, code string) {
	if markdown {
		sb.WriteString("```json\n")
		sb.WriteString(code)
		sb.WriteString("\n```\n\n")
		return
	}
	sb.WriteString(code)
	sb.WriteString("\n\n")
}

func writeUsage(sb *strings.Builder, usage *ai.TokenUsage) {
	if usage == nil {
		return
	}
	fmt.Fprintf(sb, "Tokens: input=%d output=%d total=%d\n", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
}

// titleCase turns "cover-letter" into "Cover Letter"
func titleCase(kind string) string {
	words := strings.Fields(strings.ReplaceAll(kind, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
