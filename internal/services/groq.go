package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
)

const defaultGroqModel = "llama-3.1-8b-instant"

// groqService talks to Groq through its OpenAI-compatible endpoint.
type groqService struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewGroqService(apiKey, baseURL, model string, timeout time.Duration, log *zap.Logger) (LanguageModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGroqModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}

	return newGroqService(llm, model, timeout, log), nil
}

func newGroqService(llm llms.Model, model string, timeout time.Duration, log *zap.Logger) *groqService {
	return &groqService{
		llm:       llm,
		modelName: model,
		timeout:   timeout,
		logger:    logger.WithModel(log, config.ProviderGroq, model),
	}
}

// GenerateText implements LanguageModel.
func (g *groqService) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withOptionalTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		g.logger.Warn("groq completion failed", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := strings.TrimSpace(resp)
	if text == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}

// Provider implements LanguageModel.
func (g *groqService) Provider() string {
	return config.ProviderGroq
}

// Model implements LanguageModel.
func (g *groqService) Model() string {
	return g.modelName
}
