package quiz

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quicky-client/internal/models"
)

// State is the session's lifecycle position. Exactly one state holds at
// a time; the only legal transitions are
// loading → {error|active}, active → submitting → finished, and
// finished → active (retry). error is terminal.
type State int

const (
	StateLoading State = iota
	StateError
	StateActive
	StateSubmitting
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateActive:
		return "active"
	case StateSubmitting:
		return "submitting"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

var (
	ErrNotActive       = errors.New("quiz session is not active")
	ErrNotFinished     = errors.New("quiz session is not finished")
	ErrNoAnswers       = errors.New("answer at least one question before submitting")
	ErrUnknownQuestion = errors.New("question is not part of this quiz")
	ErrUnknownOption   = errors.New("option key is not one of the question's options")
)

// Session holds one quiz run: the question set, the navigation cursor,
// the answer map and the lifecycle state. All methods are safe for
// concurrent use; each mutation is computed from the latest committed
// state under the lock, never from a stale cursor.
type Session struct {
	mu sync.Mutex

	ID        uuid.UUID
	SourceID  int64
	StartedAt time.Time

	set     *QuestionSet
	cursor  Cursor
	answers map[int64]string
	state   State
	result  Result
}

// NewSession builds an active session over the fetched questions.
func NewSession(sourceID int64, questions []models.Question) (*Session, error) {
	set, err := NewQuestionSet(questions)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.New(),
		SourceID:  sourceID,
		StartedAt: time.Now(),
		set:       set,
		cursor:    set.First(),
		answers:   make(map[int64]string),
		state:     StateActive,
	}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Set() *QuestionSet { return s.set }

// Answers returns a copy of the answer map.
func (s *Session) Answers() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// RecordAnswer inserts or overwrites one answer. It does not advance
// the cursor.
func (s *Session) RecordAnswer(questionID int64, optionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}
	q, ok := s.set.ByID(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if _, ok := q.Options[optionKey]; !ok {
		return ErrUnknownOption
	}

	s.answers[questionID] = optionKey
	return nil
}

// Navigation intents accepted by Navigate.
const (
	NavNextQuestion     = "next_question"
	NavPreviousQuestion = "previous_question"
	NavNextPage         = "next_page"
	NavPreviousPage     = "previous_page"
	NavGoToPage         = "go_to_page"
	NavGoToQuestion     = "go_to_question"
)

// Navigate applies one navigation intent to the cursor. Boundary
// violations and unknown jump targets are silent no-ops.
func (s *Session) Navigate(action string, target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}

	switch action {
	case NavNextQuestion:
		s.cursor = s.set.NextQuestion(s.cursor)
	case NavPreviousQuestion:
		s.cursor = s.set.PreviousQuestion(s.cursor)
	case NavNextPage:
		s.cursor = s.set.NextPage(s.cursor)
	case NavPreviousPage:
		s.cursor = s.set.PreviousPage(s.cursor)
	case NavGoToPage:
		s.cursor = s.set.GoToPage(s.cursor, target)
	case NavGoToQuestion:
		s.cursor = s.set.GoToQuestion(s.cursor, target)
	default:
		return fmt.Errorf("unknown navigation action %q", action)
	}
	return nil
}

// HandleKey dispatches one raw keyboard token: arrows navigate, digits
// and letters select options, space selects the first option of an
// unanswered question. Dispatch is rejected whenever the session is not
// active, so late keystrokes cannot mutate a submitted quiz.
func (s *Session) HandleKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}

	switch key {
	case KeyArrowLeft:
		s.cursor = s.set.PreviousPage(s.cursor)
		return nil
	case KeyArrowRight:
		s.cursor = s.set.NextPage(s.cursor)
		return nil
	case KeyArrowUp:
		s.cursor = s.set.PreviousQuestion(s.cursor)
		return nil
	case KeyArrowDown:
		s.cursor = s.set.NextQuestion(s.cursor)
		return nil
	}

	q, ok := s.set.QuestionAt(s.cursor)
	if !ok {
		return nil
	}

	if isSpaceKey(key) {
		if _, answered := s.answers[q.ID]; !answered {
			if keys := q.OptionKeys(); len(keys) > 0 {
				s.answers[q.ID] = keys[0]
			}
		}
		return nil
	}

	if optionKey, ok := OptionForShortcut(q, key); ok {
		s.answers[q.ID] = optionKey
	}
	return nil
}

// Submit grades the quiz. Valid from active with at least one answer;
// scoring is synchronous and the session lands in finished. A second
// Submit on a finished session is a no-op returning the same result.
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return s.result, nil
	}
	if s.state != StateActive {
		return Result{}, ErrNotActive
	}
	if len(s.answers) == 0 {
		return Result{}, ErrNoAnswers
	}

	s.state = StateSubmitting
	s.result = Score(s.set, s.answers)
	s.state = StateFinished
	return s.result, nil
}

// Retry resets a finished session for another run: empty answers, zero
// score, cursor back at the first page and question.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFinished {
		return ErrNotFinished
	}

	s.answers = make(map[int64]string)
	s.result = Result{}
	s.cursor = s.set.First()
	s.state = StateActive
	return nil
}

// Result returns the graded outcome of a finished session.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return Result{}, ErrNotFinished
	}
	return s.result, nil
}

// View is a read-only snapshot of the session for the API layer.
type View struct {
	ID              uuid.UUID        `json:"id"`
	SourceID        int64            `json:"source_id"`
	State           string           `json:"state"`
	Cursor          Cursor           `json:"cursor"`
	Pages           []int            `json:"pages"`
	TotalQuestions  int              `json:"total_questions"`
	AnsweredCount   int              `json:"answered_count"`
	PageQuestions   int              `json:"page_questions"`
	CurrentQuestion *models.Question `json:"current_question,omitempty"`
	SelectedOption  string           `json:"selected_option,omitempty"`
	Result          *Result          `json:"result,omitempty"`
}

// Snapshot assembles a View from the current committed state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:             s.ID,
		SourceID:       s.SourceID,
		State:          s.state.String(),
		Cursor:         s.cursor,
		Pages:          s.set.Pages(),
		TotalQuestions: s.set.Len(),
		AnsweredCount:  len(s.answers),
		PageQuestions:  len(s.set.PageQuestions(s.cursor.Page)),
	}
	if q, ok := s.set.QuestionAt(s.cursor); ok {
		v.CurrentQuestion = &q
		v.SelectedOption = s.answers[q.ID]
	}
	if s.state == StateFinished {
		r := s.result
		v.Result = &r
	}
	return v
}
