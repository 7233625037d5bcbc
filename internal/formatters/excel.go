package formatters

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"resumatch/internal/workflow"
)

// Workbook sheet names
const (
	SheetSummary     = "Summary"
	SheetBreakdown   = "Breakdown"
	SheetSuggestions = "Suggestions"
)

// ExportScores writes the reports to an .xlsx workbook at path. The
// extension is added when missing.
func ExportScores(reports []workflow.ScoreReport, path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteScores streams the workbook to w
func WriteScores(w io.Writer, reports []workflow.ScoreReport) error {
	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(reports []workflow.ScoreReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetBreakdown, SheetSuggestions} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name    string
		headers []any
		widths  []float64
		rows    func(workflow.ScoreReport) [][]any
	}{
		{SheetSummary, []any{"Posting", "Total", "Grade", "Role"}, []float64{40, 10, 10, 20}, summaryRows},
		{SheetBreakdown, []any{"Posting", "Dimension", "Score", "Max", "Details"}, []float64{40, 20, 10, 10, 80}, breakdownRows},
		{SheetSuggestions, []any{"Posting", "Priority", "Suggestion", "How to fix"}, []float64{40, 10, 60, 80}, suggestionRows},
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.widths, headerStyle, reports, sheet.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to fill %s sheet: %w", sheet.name, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, widths []float64, headerStyle int,
	reports []workflow.ScoreReport, rows func(workflow.ScoreReport) [][]any) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, r := range reports {
		for _, values := range rows(r) {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func summaryRows(r workflow.ScoreReport) [][]any {
	return [][]any{{r.Source, r.Result.Total, string(r.Result.Grade), r.Result.Breakdown.RoleAlignment.Detected}}
}

func breakdownRows(r workflow.ScoreReport) [][]any {
	dims := Dimensions(r.Result.Breakdown)
	rows := make([][]any, 0, len(dims))
	for _, d := range dims {
		rows = append(rows, []any{r.Source, d.Name, d.Score, d.Max, d.Detail})
	}
	return rows
}

func suggestionRows(r workflow.ScoreReport) [][]any {
	rows := make([][]any, 0, len(r.Result.Suggestions))
	for _, s := range r.Result.Suggestions {
		rows = append(rows, []any{r.Source, string(s.Priority), s.Text, s.HowToFix})
	}
	return rows
}
