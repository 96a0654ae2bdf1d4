package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExcel renders the snapshot as a two-sheet workbook: a Summary
// sheet with the aggregate score and a Detailed Results sheet with one
// row per question. Unlike the PDF table, question text is written in
// full.
func WriteExcel(w io.Writer, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	const detailed = "Detailed Results"

	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Quiz Results Summary"},
		{},
		{"Total Questions", snap.Total},
		{"Correct Answers", snap.Correct},
		{"Percentage", fmt.Sprintf("%d%%", snap.Percentage)},
		{"Status", statusLabel(snap.Passed)},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(detailed); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := []interface{}{"Question #", "Question Text", "Your Answer", "Correct Answer", "Result", "Page Number", "Explanation"}
	if err := f.SetSheetRow(detailed, "A1", &header); err != nil {
		return fmt.Errorf("detailed header: %w", err)
	}
	for i, row := range snap.Rows {
		cells := []interface{}{
			row.Number,
			row.QuestionText,
			row.SelectedText,
			row.CorrectText,
			resultLabel(row.IsCorrect),
			row.Page,
			row.Explanation,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailed, cell, &cells); err != nil {
			return fmt.Errorf("detailed row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
