package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/config"
)

// LanguageModel turns a prompt into free-form text. Implementations make a
// single attempt per call.
type LanguageModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// NewLanguageModel builds the client selected by cfg.Provider.
func NewLanguageModel(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (LanguageModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.Timeout, log)
	case config.ProviderGroq:
		return NewGroqService(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.Model, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("unsupported language model provider %q", cfg.Provider)
	}
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
