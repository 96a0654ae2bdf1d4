package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ContentGenService writes study material for a topic title so the text
// upload path has something to submit. With a Gemini key configured the
// text is generated locally; otherwise the request is proxied to the
// quiz backend's generator.
type ContentGenService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	backend  *BackendService
	rateChan chan struct{} // Token bucket
}

func NewContentGenService(apiKey string, concurrentReqs int, backend *BackendService) (*ContentGenService, error) {
	s := &ContentGenService{backend: backend}

	if apiKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2000)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s.client = client
	s.model = model
	s.rateChan = rateChan
	return s, nil
}

func (s *ContentGenService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *ContentGenService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *ContentGenService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate produces quiz-ready study content for the topic title.
func (s *ContentGenService) Generate(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationErrorf("title is required")
	}

	if s.model == nil {
		return s.backend.GenerateContent(ctx, title)
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	prompt := fmt.Sprintf("Generate comprehensive educational content about %s. "+
		"The content should be detailed, well-structured, and suitable for creating quiz questions. "+
		"Include detailed key concepts but do not make any quiz Questions, also make sure you do not use markdown.", title)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned empty content")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
