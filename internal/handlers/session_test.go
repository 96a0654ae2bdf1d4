package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quicky-client/internal/middleware"
	"quicky-client/internal/models"
	"quicky-client/internal/quiz"
	"quicky-client/internal/services"
)

type stubFetcher struct {
	questions []models.Question
}

func (s stubFetcher) ListQuestions(context.Context, int64) ([]models.Question, error) {
	return s.questions, nil
}

func quizQuestions() []models.Question {
	opts := map[string]string{"A": "alpha", "B": "beta", "C": "gamma", "D": "delta"}
	return []models.Question{
		{ID: 1, SourceID: 9, QuestionText: "Q1", Options: opts, CorrectAnswer: "A", PageNumber: 1},
		{ID: 2, SourceID: 9, QuestionText: "Q2", Options: opts, CorrectAnswer: "B", PageNumber: 1},
		{ID: 3, SourceID: 9, QuestionText: "Q3", Options: opts, CorrectAnswer: "C", PageNumber: 2},
	}
}

type sessionFixture struct {
	router  http.Handler
	token   string
	session *quiz.Session
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	sessions := services.NewSessionService(stubFetcher{questions: quizQuestions()})
	session, err := sessions.Start(context.Background(), 9, "lecture.pdf")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	auth := middleware.NewSessionAuth("test-secret")
	token, err := auth.IssueToken(session.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	handler := NewSessionHandler(sessions)
	r := chi.NewRouter()
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/{sessionID}", handler.Get)
		r.Post("/{sessionID}/answers", handler.Answer)
		r.Post("/{sessionID}/nav", handler.Navigate)
		r.Post("/{sessionID}/keys", handler.Key)
		r.Post("/{sessionID}/submit", handler.Submit)
		r.Post("/{sessionID}/retry", handler.Retry)
		r.Get("/{sessionID}/export/{format}", handler.Export)
	})

	return &sessionFixture{router: r, token: token, session: session}
}

func (f *sessionFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1/sessions/"+f.session.ID.String()+path, reader)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSessionFlow(t *testing.T) {
	f := newSessionFixture(t)

	// Fresh session view.
	rec := f.do(t, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: %d %s", rec.Code, rec.Body.String())
	}
	var view quiz.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.State != "active" || view.TotalQuestions != 3 || view.Cursor.Page != 1 {
		t.Fatalf("initial view = %+v", view)
	}

	// Submit without answers is rejected with a conflict.
	rec = f.do(t, http.MethodPost, "/submit", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("empty submit: %d", rec.Code)
	}

	// Answer two questions, one via the keyboard shortcut.
	rec = f.do(t, http.MethodPost, "/answers", map[string]interface{}{"question_id": 1, "option_key": "A"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: %d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/nav", map[string]interface{}{"action": "next_question"})
	if rec.Code != http.StatusOK {
		t.Fatalf("nav: %d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/keys", map[string]string{"key": "2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("key: %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.SelectedOption != "B" || view.AnsweredCount != 2 {
		t.Fatalf("view after shortcut = %+v", view)
	}

	// Submit and check the grade: 2 of 3 correct.
	rec = f.do(t, http.MethodPost, "/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var result quiz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Correct != 2 || result.Total != 3 || result.Percentage != 67 || result.Passed {
		t.Fatalf("result = %+v", result)
	}

	// Keystrokes after submission are rejected.
	rec = f.do(t, http.MethodPost, "/keys", map[string]string{"key": "1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("key after submit: %d", rec.Code)
	}

	// Exports work on the finished session.
	rec = f.do(t, http.MethodGet, "/export/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export pdf: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "quiz-results.pdf") {
		t.Errorf("pdf disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf export is not a PDF")
	}

	rec = f.do(t, http.MethodGet, "/export/word", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2 / 3 (67%)") {
		t.Fatalf("export word: %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/export/csv", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus format: %d", rec.Code)
	}

	// Retry resets the session.
	rec = f.do(t, http.MethodPost, "/retry", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("retry: %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.State != "active" || view.AnsweredCount != 0 || view.Result != nil {
		t.Fatalf("view after retry = %+v", view)
	}

	// Export is rejected again until resubmission.
	rec = f.do(t, http.MethodGet, "/export/excel", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("export after retry: %d", rec.Code)
	}
}

func TestSessionTokenScope(t *testing.T) {
	f := newSessionFixture(t)

	// A token for a different session is rejected on this one.
	auth := middleware.NewSessionAuth("test-secret")
	otherToken, err := auth.IssueToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+f.session.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign token: %d, want 403", rec.Code)
	}

	// No token at all.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+f.session.ID.String(), nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: %d, want 401", rec.Code)
	}
}
