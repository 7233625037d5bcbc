package formatters

import (
	"fmt"
	"strings"

	"resumatch/internal/ats"
	"resumatch/internal/workflow"
)

// Dimension is one flattened row of a score breakdown
type Dimension struct {
	Name   string
	Score  int
	Max    int
	Detail string
}

// Dimensions flattens a breakdown in report order
func Dimensions(b ats.Breakdown) []Dimension {
	title := "not found"
	if b.JobTitleMatch.Found {
		title = "found"
	}
	if b.JobTitleMatch.Title != "" {
		title += fmt.Sprintf(" (%q)", b.JobTitleMatch.Title)
	}
	role := b.RoleAlignment.Detected
	if role == "" {
		role = "none"
	}

	return []Dimension{
		{"Hard skills", b.HardSkills.Score, b.HardSkills.Max,
			"matched: " + joinOrNone(b.HardSkills.Matched) + "; missing: " + joinOrNone(b.HardSkills.Missing)},
		{"Soft skills", b.SoftSkills.Score, b.SoftSkills.Max,
			"matched: " + joinOrNone(b.SoftSkills.Matched) + "; missing: " + joinOrNone(b.SoftSkills.Missing)},
		{"Job title", b.JobTitleMatch.Score, b.JobTitleMatch.Max, title},
		{"Education", b.EducationMatch.Score, b.EducationMatch.Max,
			"requested: " + joinOrNone(b.EducationMatch.Requested) + "; found: " + joinOrNone(b.EducationMatch.Found)},
		{"Sections", b.SectionCompleteness.Score, b.SectionCompleteness.Max,
			"missing: " + joinOrNone(b.SectionCompleteness.Missing)},
		{"Action verbs", b.ActionVerbStrength.Score, b.ActionVerbStrength.Max,
			"found: " + joinOrNone(b.ActionVerbStrength.Found)},
		{"Quantified results", b.Quantification.Score, b.Quantification.Max,
			fmt.Sprintf("%d found", len(b.Quantification.Found))},
		{"Role alignment", b.RoleAlignment.Score, b.RoleAlignment.Max,
			role + "; tech: " + joinOrNone(b.RoleAlignment.MatchedTech)},
	}
}

// ScoreFormatter renders one ATS report
type ScoreFormatter struct {
	Markdown bool
}

func (sf *ScoreFormatter) Format(data any) (string, error) {
	var result ats.Result
	switch r := data.(type) {
	case ats.Result:
		result = r
	case *ats.Result:
		if r == nil {
			return "", fmt.Errorf("nil score result")
		}
		result = *r
	default:
		return "", fmt.Errorf("expected ats.Result, got %T", data)
	}

	var sb strings.Builder
	writeScore(&sb, sf.Markdown, "ATS Score", result)
	return sb.String(), nil
}

func (sf *ScoreFormatter) SupportedType() string {
	return TypeScore
}

func writeScore(sb *strings.Builder, markdown bool, title string, result ats.Result) {
	heading(sb, markdown, title)
	if markdown {
		fmt.Fprintf(sb, "**Total:** %d/100 (grade %s)\n\n", result.Total, result.Grade)
		sb.WriteString("| Dimension | Score | Details |\n|---|---|---|\n")
		for _, d := range Dimensions(result.Breakdown) {
			fmt.Fprintf(sb, "| %s | %d/%d | %s |\n", d.Name, d.Score, d.Max, d.Detail)
		}
		sb.WriteString("\n")
		if len(result.Suggestions) > 0 {
			sb.WriteString("### Suggestions\n\n")
			for _, s := range result.Suggestions {
				fmt.Fprintf(sb, "- **%s**: %s  \n  %s\n", s.Priority, s.Text, s.HowToFix)
			}
			sb.WriteString("\n")
		}
		return
	}

	fmt.Fprintf(sb, "Total: %d/100 (grade %s)\n\n", result.Total, result.Grade)
	for _, d := range Dimensions(result.Breakdown) {
		fmt.Fprintf(sb, "  %-20s %2d/%-2d  %s\n", d.Name, d.Score, d.Max, d.Detail)
	}
	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range result.Suggestions {
			fmt.Fprintf(sb, "  [%s] %s\n      %s\n", s.Priority, s.Text, s.HowToFix)
		}
	}
	sb.WriteString("\n")
}

// ScoreBatchFormatter renders several postings scored against one resume
type ScoreBatchFormatter struct {
	Markdown bool
}

func (bf *ScoreBatchFormatter) Format(data any) (string, error) {
	reports, ok := data.([]workflow.ScoreReport)
	if !ok {
		return "", fmt.Errorf("expected []workflow.ScoreReport, got %T", data)
	}

	var sb strings.Builder
	heading(&sb, bf.Markdown, "Ranking")
	if bf.Markdown {
		sb.WriteString("| Posting | Total | Grade | Role |\n|---|---|---|---|\n")
	}
	for _, r := range reports {
		role := r.Result.Breakdown.RoleAlignment.Detected
		if bf.Markdown {
			fmt.Fprintf(&sb, "| %s | %d | %s | %s |\n", r.Source, r.Result.Total, r.Result.Grade, role)
		} else {
			fmt.Fprintf(&sb, "  %3d  %s  %s\n", r.Result.Total, r.Result.Grade, r.Source)
		}
	}
	sb.WriteString("\n")

	for _, r := range reports {
		writeScore(&sb, bf.Markdown, r.Source, r.Result)
	}
	return sb.String(), nil
}

func (bf *ScoreBatchFormatter) SupportedType() string {
	return TypeScoreBatch
}
