package formatters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"resumatch/internal/ai"
	"resumatch/internal/ats"
	"resumatch/internal/types"
	"resumatch/internal/workflow"
)

func sampleResult() ats.Result {
	return ats.Result{
		Total: 72,
		Grade: ats.GradeB,
		Breakdown: ats.Breakdown{
			HardSkills:    ats.SkillMatch{Score: 18, Max: ats.MaxHardSkills, Matched: []string{"go"}, Missing: []string{"kubernetes"}},
			RoleAlignment: ats.RoleAlignment{Score: 10, Max: ats.MaxRoleAlignment, Detected: "backend"},
		},
		Suggestions: []ats.Suggestion{{Priority: ats.PriorityHigh, Text: "Add kubernetes", HowToFix: "Mention it in Skills"}},
	}
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewFormatterRegistry()
	result := sampleResult()

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"score text", result, "text", []string{"=== ATS SCORE ===", "Total: 72/100 (grade B)", "kubernetes", "[high] Add kubernetes"}},
		{"score markdown", &result, "markdown", []string{"## ATS Score", "| Hard skills | 18/25 |"}},
		{"score json", result, "json", []string{`"total": 72`, `"grade": "B"`}},
		{"batch", []workflow.ScoreReport{{Source: "job-a.txt", Result: result}}, "text", []string{"=== RANKING ===", "72  B  job-a.txt", "=== JOB-A.TXT ==="}},
		{"prompt text", "Rewrite <this>", "text", []string{"Rewrite <this>"}},
		{"prompt json", "Rewrite <this>", "json", []string{`"prompt": "Rewrite <this>"`}},
		{"cover letter", &workflow.Text{Kind: "cover-letter", Text: "Dear team"}, "markdown", []string{"## Cover Letter", "Dear team"}},
		{"interview", &workflow.InterviewOutcome{
			Items:     []types.InterviewQuestion{{Question: "Why Go?", Type: "Technical", Reasoning: "JD"}},
			FromCache: true, CachedAgo: "5m ago",
		}, "text", []string{"(cached 5m ago)", "1. [Technical] Why Go?"}},
		{"models offline", ai.ModelList{}, "text", []string{"Ollama is not reachable."}},
		{"models", ai.ModelList{Available: true, Models: []ai.OllamaModel{{Name: "llama3:8b", Size: 4 << 30}}}, "text", []string{"llama3:8b (4.0 GB)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleResult(), "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}

	got := GlobalRegistry.GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetSupportedFormats() = %v, want %v", got, want)
	}
}

func TestRewriteFormatter(t *testing.T) {
	before := sampleResult()
	after := sampleResult()
	after.Total = 91
	after.Grade = ats.GradeA

	out := &workflow.RewriteOutcome{
		ChangeLog: "- Added Kubernetes",
		Resume:    &types.ResumeDocument{PersonalInfo: types.PersonalInfo{FullName: "Jane Doe"}},
		Before:    before,
		After:     &after,
		Usage:     &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	got, err := GlobalRegistry.Format(out, "markdown")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Change Log", "Before: 72 (B)  After: 91 (A)  Change: +19", "```json", `"fullName": "Jane Doe"`, "total=15"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	cancelled, err := GlobalRegistry.Format(&workflow.RewriteOutcome{Cancelled: true}, "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cancelled, "cancelled") {
		t.Errorf("cancelled rewrite not reported: %q", cancelled)
	}
}

func TestWriteScores(t *testing.T) {
	reports := []workflow.ScoreReport{
		{Source: "a.txt", Result: sampleResult()},
		{Source: "b.txt", Result: ats.Result{Total: 20, Grade: ats.GradeF}},
	}

	var buf bytes.Buffer
	if err := WriteScores(&buf, reports); err != nil {
		t.Fatalf("WriteScores() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); strings.Join(got, ",") != "Summary,Breakdown,Suggestions" {
		t.Errorf("sheets = %v", got)
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("summary rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "a.txt" || rows[1][1] != "72" || rows[2][2] != "F" {
		t.Errorf("unexpected summary rows: %v", rows)
	}

	breakdown, err := f.GetRows(SheetBreakdown)
	if err != nil {
		t.Fatal(err)
	}
	if len(breakdown) != 1+2*8 {
		t.Errorf("breakdown rows = %d, want %d", len(breakdown), 1+2*8)
	}

	suggestions, err := f.GetRows(SheetSuggestions)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 2 || suggestions[1][1] != "high" {
		t.Errorf("unexpected suggestion rows: %v", suggestions)
	}
}
