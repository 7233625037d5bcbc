// Package prompt composes the instructions sent to language models: the ATS
// rewrite directive and the supporting cover-letter, interview and parsing
// prompts.
package prompt

import (
	"bytes"
	"encoding/json"
	"strings"

	"resumatch/internal/types"
)

// resumeJSON renders the resume with two-space indentation and without HTML
// escaping, the form models see it in.
func resumeJSON(resume types.ResumeDocument) string {
	resume.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resume); err != nil {
		// ResumeDocument holds only strings, bools and slices of them.
		return "{}"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// overridesBlock wraps caller-supplied extra instructions. Blank input
// produces nothing.
func overridesBlock(overrides string) string {
	if strings.TrimSpace(overrides) == "" {
		return ""
	}
	return "\n<user_overrides>\n" + overrides + "\n</user_overrides>\n"
}

func bulletList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("  • ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
