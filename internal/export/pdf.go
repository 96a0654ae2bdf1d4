package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// PDF layout constants, A4 portrait with millimeter units.
var pdfColWidths = []float64{10, 60, 40, 40, 20, 15}

var pdfHeaders = []string{"#", "Question", "Your Answer", "Correct Answer", "Result", "Page"}

// WritePDF renders the snapshot as a results table followed by the
// per-question explanations. Question text in the table is truncated to
// 60 characters; explanations carry the full text.
func WritePDF(w io.Writer, snap Snapshot) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.Text(20, 20, "Quiz Results")

	doc.SetFont("Helvetica", "", 14)
	doc.Text(20, 40, fmt.Sprintf("Score: %d / %d (%d%%)", snap.Correct, snap.Total, snap.Percentage))
	doc.Text(20, 50, fmt.Sprintf("Status: %s", statusLabel(snap.Passed)))

	doc.SetY(60)
	doc.SetX(20)
	doc.SetFont("Helvetica", "B", 8)
	doc.SetFillColor(66, 139, 202)
	doc.SetTextColor(255, 255, 255)
	for i, h := range pdfHeaders {
		doc.CellFormat(pdfColWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(0, 0, 0)
	for _, row := range snap.Rows {
		if doc.GetY() > 270 {
			doc.AddPage()
			doc.SetY(20)
		}
		doc.SetX(20)
		cells := []string{
			fmt.Sprintf("%d", row.Number),
			truncate(row.QuestionText, 60),
			row.SelectedText,
			row.CorrectText,
			resultLabel(row.IsCorrect),
			fmt.Sprintf("%d", row.Page),
		}
		for i, c := range cells {
			doc.CellFormat(pdfColWidths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	y := doc.GetY() + 20
	for _, row := range snap.Rows {
		if row.Explanation == "" {
			continue
		}
		if y > 250 {
			doc.AddPage()
			y = 20
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.Text(20, y, fmt.Sprintf("Q%d Explanation:", row.Number))
		y += 10

		doc.SetFont("Helvetica", "", 10)
		lines := doc.SplitText(row.Explanation, 170)
		for _, line := range lines {
			if y > 280 {
				doc.AddPage()
				y = 20
			}
			doc.Text(20, y, line)
			y += 5
		}
		y += 10
	}

	return doc.Output(w)
}

func statusLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}

func resultLabel(correct bool) string {
	if correct {
		return "Correct"
	}
	return "Wrong"
}
