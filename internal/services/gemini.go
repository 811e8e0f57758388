package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiModels is the subset of *genai.Models the service calls.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiService struct {
	models    geminiModels
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (LanguageModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, model, timeout, log), nil
}

func newGeminiService(models geminiModels, model string, timeout time.Duration, log *zap.Logger) *geminiService {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}

	return &geminiService{
		models:    models,
		modelName: model,
		timeout:   timeout,
		logger:    logger.WithModel(log, config.ProviderGemini, model),
	}
}

// GenerateText implements LanguageModel.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withOptionalTimeout(ctx, g.timeout)
	defer cancel()

	temperature := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		g.logger.Warn("gemini generate content failed", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}

// Provider implements LanguageModel.
func (g *geminiService) Provider() string {
	return config.ProviderGemini
}

// Model implements LanguageModel.
func (g *geminiService) Model() string {
	return g.modelName
}
