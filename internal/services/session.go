package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quicky-client/internal/export"
	"quicky-client/internal/models"
	"quicky-client/internal/quiz"
)

// sessionTTL bounds how long an untouched session is kept in memory.
const sessionTTL = 6 * time.Hour

// QuestionFetcher loads the generated questions for a source.
type QuestionFetcher interface {
	ListQuestions(ctx context.Context, sourceID int64) ([]models.Question, error)
}

type sessionEntry struct {
	session *quiz.Session
	touched time.Time
	title   string
}

// SessionService is the in-memory registry of running quiz sessions.
// Sessions are ephemeral; only the attempted/generated badges and the
// saved configs outlive them.
type SessionService struct {
	fetcher QuestionFetcher

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

func NewSessionService(fetcher QuestionFetcher) *SessionService {
	return &SessionService{
		fetcher:  fetcher,
		sessions: make(map[uuid.UUID]*sessionEntry),
	}
}

// Start fetches the questions for a source and opens a session over
// them. An empty question set is a quiz.ErrNoQuestions error.
func (s *SessionService) Start(ctx context.Context, sourceID int64, title string) (*quiz.Session, error) {
	questions, err := s.fetcher.ListQuestions(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	session, err := quiz.NewSession(sourceID, questions)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = &sessionEntry{session: session, touched: time.Now(), title: title}
	s.mu.Unlock()

	return session, nil
}

// Get resolves a session by ID, refreshing its expiry.
func (s *SessionService) Get(id uuid.UUID) (*quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	entry.touched = time.Now()
	return entry.session, nil
}

// Export renders a finished session in the requested format.
func (s *SessionService) Export(id uuid.UUID, format export.Format) (export.Snapshot, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return export.Snapshot{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}

	session := entry.session
	result, err := session.Result()
	if err != nil {
		return export.Snapshot{}, err
	}
	return export.BuildSnapshot(entry.title, session.Set(), session.Answers(), result), nil
}

// pruneLocked drops sessions idle past the TTL. Caller holds the lock.
func (s *SessionService) pruneLocked() {
	cutoff := time.Now().Add(-sessionTTL)
	for id, entry := range s.sessions {
		if entry.touched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
