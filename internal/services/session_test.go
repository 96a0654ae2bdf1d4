package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"quicky-client/internal/export"
	"quicky-client/internal/models"
	"quicky-client/internal/quiz"
)

type stubFetcher struct {
	questions []models.Question
	err       error
}

func (s stubFetcher) ListQuestions(context.Context, int64) ([]models.Question, error) {
	return s.questions, s.err
}

func sessionQuestions() []models.Question {
	return []models.Question{
		{ID: 1, SourceID: 5, QuestionText: "Q1", Options: map[string]string{"A": "a", "B": "b"}, CorrectAnswer: "A", PageNumber: 1},
		{ID: 2, SourceID: 5, QuestionText: "Q2", Options: map[string]string{"A": "a", "B": "b"}, CorrectAnswer: "B", PageNumber: 1},
	}
}

func TestSessionService_StartAndGet(t *testing.T) {
	svc := NewSessionService(stubFetcher{questions: sessionQuestions()})

	session, err := svc.Start(context.Background(), 5, "lecture.pdf")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.SourceID != 5 || session.State() != quiz.StateActive {
		t.Errorf("session = %+v", session.Snapshot())
	}

	got, err := svc.Get(session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != session {
		t.Error("Get returned a different session")
	}

	if _, err := svc.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown ID: got %v", err)
	}
}

func TestSessionService_StartEmptySource(t *testing.T) {
	svc := NewSessionService(stubFetcher{questions: nil})
	if _, err := svc.Start(context.Background(), 5, "x"); !errors.Is(err, quiz.ErrNoQuestions) {
		t.Errorf("empty source: got %v", err)
	}
}

func TestSessionService_Export(t *testing.T) {
	svc := NewSessionService(stubFetcher{questions: sessionQuestions()})
	session, err := svc.Start(context.Background(), 5, "lecture.pdf")
	if err != nil {
		t.Fatal(err)
	}

	// Export before finishing is rejected.
	if _, err := svc.Export(session.ID, export.FormatPDF); !errors.Is(err, quiz.ErrNotFinished) {
		t.Errorf("unfinished export: got %v", err)
	}

	if err := session.RecordAnswer(1, "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := session.Submit(); err != nil {
		t.Fatal(err)
	}

	snap, err := svc.Export(session.ID, export.FormatPDF)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.SourceTitle != "lecture.pdf" || snap.Correct != 1 || snap.Total != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}
