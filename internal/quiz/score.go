package quiz

import "math"

// PassThreshold is the fixed pass mark, in percent.
const PassThreshold = 70

// Result is the outcome of a submitted quiz.
type Result struct {
	Correct    int  `json:"correct_count"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Passed     bool `json:"passed"`
}

// Score grades an answer map against the set's correct keys. Missing
// entries count as incorrect. The caller guarantees a non-empty set
// (enforced by NewQuestionSet), so the percentage is always defined.
func Score(set *QuestionSet, answers map[int64]string) Result {
	correct := 0
	for _, q := range set.Questions() {
		if answers[q.ID] == q.CorrectAnswer {
			correct++
		}
	}

	total := set.Len()
	pct := int(math.Round(float64(correct) / float64(total) * 100))

	return Result{
		Correct:    correct,
		Total:      total,
		Percentage: pct,
		Passed:     pct >= PassThreshold,
	}
}
