package quiz

import (
	"errors"
	"sort"

	"quicky-client/internal/models"
)

// ErrNoQuestions is returned when a session is created over an empty
// question list.
var ErrNoQuestions = errors.New("no questions found for this source")

// QuestionSet is the ordered question collection for one source,
// partitioned by source page. The partition is derived at construction
// time: pages ascending, questions within a page ascending by ID.
type QuestionSet struct {
	questions []models.Question
	pages     []int
	byPage    map[int][]models.Question
}

func NewQuestionSet(questions []models.Question) (*QuestionSet, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	sorted := make([]models.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page() != sorted[j].Page() {
			return sorted[i].Page() < sorted[j].Page()
		}
		return sorted[i].ID < sorted[j].ID
	})

	byPage := make(map[int][]models.Question)
	for _, q := range sorted {
		byPage[q.Page()] = append(byPage[q.Page()], q)
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	return &QuestionSet{
		questions: sorted,
		pages:     pages,
		byPage:    byPage,
	}, nil
}

// Len is the total number of questions across all pages.
func (s *QuestionSet) Len() int { return len(s.questions) }

// Questions returns every question in global order (page, then ID).
func (s *QuestionSet) Questions() []models.Question { return s.questions }

// Pages returns the sorted page numbers that have questions.
func (s *QuestionSet) Pages() []int { return s.pages }

// PageQuestions returns the ordered questions on one page; nil when the
// page is not part of the partition.
func (s *QuestionSet) PageQuestions(page int) []models.Question { return s.byPage[page] }

// First is the cursor at the first question of the first page.
func (s *QuestionSet) First() Cursor {
	return Cursor{Page: s.pages[0], Index: 0}
}

// QuestionAt resolves a cursor to its question. The second return is
// false for a cursor outside the partition.
func (s *QuestionSet) QuestionAt(c Cursor) (models.Question, bool) {
	qs, ok := s.byPage[c.Page]
	if !ok || c.Index < 0 || c.Index >= len(qs) {
		return models.Question{}, false
	}
	return qs[c.Index], true
}

// ByID finds a question in the set by its identifier.
func (s *QuestionSet) ByID(id int64) (models.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

func (s *QuestionSet) pageIndex(page int) int {
	for i, p := range s.pages {
		if p == page {
			return i
		}
	}
	return -1
}
