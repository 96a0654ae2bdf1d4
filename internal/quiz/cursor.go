package quiz

import (
	"strings"

	"quicky-client/internal/models"
)

// Cursor is a position into a QuestionSet's page partition.
type Cursor struct {
	Page  int `json:"page"`
	Index int `json:"index"`
}

// NextQuestion advances within the current page, crossing to the first
// question of the next page when the page is exhausted. No-op at the
// absolute last question.
func (s *QuestionSet) NextQuestion(c Cursor) Cursor {
	if c.Index < len(s.byPage[c.Page])-1 {
		return Cursor{Page: c.Page, Index: c.Index + 1}
	}
	return s.NextPage(c)
}

// PreviousQuestion retreats within the current page, crossing to the
// last question of the previous page at the page boundary. No-op at the
// absolute first question.
func (s *QuestionSet) PreviousQuestion(c Cursor) Cursor {
	if c.Index > 0 {
		return Cursor{Page: c.Page, Index: c.Index - 1}
	}
	pi := s.pageIndex(c.Page)
	if pi <= 0 {
		return c
	}
	prev := s.pages[pi-1]
	return Cursor{Page: prev, Index: len(s.byPage[prev]) - 1}
}

// NextPage jumps to the first question of the next page in sorted page
// order. No-op on the last page.
func (s *QuestionSet) NextPage(c Cursor) Cursor {
	pi := s.pageIndex(c.Page)
	if pi < 0 || pi >= len(s.pages)-1 {
		return c
	}
	return Cursor{Page: s.pages[pi+1], Index: 0}
}

// PreviousPage jumps to the first question of the previous page. No-op
// on the first page.
func (s *QuestionSet) PreviousPage(c Cursor) Cursor {
	pi := s.pageIndex(c.Page)
	if pi <= 0 {
		return c
	}
	return Cursor{Page: s.pages[pi-1], Index: 0}
}

// GoToPage jumps directly to a page, resetting the index. Fails
// silently when the page is not in the partition.
func (s *QuestionSet) GoToPage(c Cursor, page int) Cursor {
	if _, ok := s.byPage[page]; !ok {
		return c
	}
	return Cursor{Page: page, Index: 0}
}

// GoToQuestion jumps within the current page only. Fails silently when
// the index is out of range.
func (s *QuestionSet) GoToQuestion(c Cursor, index int) Cursor {
	if index < 0 || index >= len(s.byPage[c.Page]) {
		return c
	}
	return Cursor{Page: c.Page, Index: index}
}

// OptionForShortcut maps a raw key token to one of the question's
// option keys: digits 1-9 select by position, single letters a-d
// (case-insensitive) select by alphabetical offset. Invalid or
// out-of-range tokens return false.
func OptionForShortcut(q models.Question, key string) (string, bool) {
	if len(key) != 1 {
		return "", false
	}
	keys := q.OptionKeys()

	ch := key[0]
	idx := -1
	switch {
	case ch >= '1' && ch <= '9':
		idx = int(ch - '1')
	case ch >= 'a' && ch <= 'd':
		idx = int(ch - 'a')
	case ch >= 'A' && ch <= 'D':
		idx = int(ch - 'A')
	default:
		return "", false
	}

	if idx < 0 || idx >= len(keys) {
		return "", false
	}
	return keys[idx], true
}

// Key tokens understood by the keyboard dispatcher. Arrow names match
// the browser event.key values the original UI listened for.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeySpace      = " "
)

func isSpaceKey(key string) bool {
	return key == KeySpace || strings.EqualFold(key, "Space")
}
