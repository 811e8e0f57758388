package services

import (
	"context"
	"sync"

	"alfredoptarigan/cv-matcher/internal/models"
)

type stubLanguageModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubLanguageModel) GenerateText(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubLanguageModel) Provider() string { return "stub" }
func (s *stubLanguageModel) Model() string    { return "stub-model" }

func (s *stubLanguageModel) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type stubNotifier struct {
	mu        sync.Mutex
	delivery  Delivery
	sentTo    []string
	delivered []models.Notification
}

func (s *stubNotifier) Send(_ context.Context, recipient string, n models.Notification) Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentTo = append(s.sentTo, recipient)
	s.delivered = append(s.delivered, n)
	return s.delivery
}
