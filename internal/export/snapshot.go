// Package export renders a finished quiz into downloadable documents.
package export

import (
	"quicky-client/internal/quiz"
)

// Row is one graded question in reading order.
type Row struct {
	Number       int
	QuestionText string
	SelectedKey  string
	SelectedText string
	CorrectKey   string
	CorrectText  string
	Explanation  string
	Page         int
	IsCorrect    bool
}

// Snapshot carries everything an exporter needs. Exporters never reach
// back into the live session.
type Snapshot struct {
	SourceTitle string
	Correct     int
	Total       int
	Percentage  int
	Passed      bool
	Rows        []Row
}

// BuildSnapshot flattens the question set in page order and grades each
// row against the recorded answers. Unanswered questions appear with an
// empty selected key and the text "Not answered".
func BuildSnapshot(title string, set *quiz.QuestionSet, answers map[int64]string, result quiz.Result) Snapshot {
	snap := Snapshot{
		SourceTitle: title,
		Correct:     result.Correct,
		Total:       result.Total,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
	}

	num := 0
	for _, page := range set.Pages() {
		for _, q := range set.PageQuestions(page) {
			num++
			selected := answers[q.ID]
			snap.Rows = append(snap.Rows, Row{
				Number:       num,
				QuestionText: q.QuestionText,
				SelectedKey:  selected,
				SelectedText: q.OptionText(selected),
				CorrectKey:   q.CorrectAnswer,
				CorrectText:  q.OptionText(q.CorrectAnswer),
				Explanation:  q.Explanation,
				Page:         q.Page(),
				IsCorrect:    selected != "" && selected == q.CorrectAnswer,
			})
		}
	}
	return snap
}

// truncate shortens s to max runes with a trailing ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
