package models

import (
	"sort"
	"time"
)

// Question is a single generated quiz question as served by the backend.
// Options map short keys ("A".."D", or "True"/"False") to option text.
// Immutable once fetched for a session.
type Question struct {
	ID            int64             `json:"id"`
	SourceID      int64             `json:"source"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
	PageNumber    int               `json:"page_number,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Page returns the source page the question was generated from,
// defaulting to 1 when the backend sent none.
func (q Question) Page() int {
	if q.PageNumber < 1 {
		return 1
	}
	return q.PageNumber
}

// OptionKeys returns the option keys in display order. Keys are sorted
// so that positional shortcuts (1-9, a-d) are deterministic.
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OptionText resolves a selected key to its display text.
// An empty or unknown key reads as "Not answered".
func (q Question) OptionText(key string) string {
	if text, ok := q.Options[key]; ok {
		return text
	}
	return "Not answered"
}
