package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

const defaultMaxLogLength = 200

var (
	percentagePrimary = regexp.MustCompile(`Match Percentage:?\s*(\d+)`)

	percentageFallbacks = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Match Percentage:?\s*(\d+)%`),
		regexp.MustCompile(`(?i)Match Percentage.*?(\d+)`),
		regexp.MustCompile(`(?i)match.*?(\d+)%`),
	}

	// The first two read the labeled line directly; the last two allow
	// arbitrary text between label and verdict.
	recommendationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Recommendation:?\s*(ACCEPT|REJECT)`),
		regexp.MustCompile(`(?i)Recommendation:?\s*(Accept|Reject)`),
		regexp.MustCompile(`(?i)Recommendation.*?(ACCEPT|REJECT)`),
		regexp.MustCompile(`(?i)Recommendation.*?(Accept|Reject)`),
	}

	acceptKeyword = regexp.MustCompile(`(?i)\baccept\b`)
)

type EvaluatorService interface {
	Evaluate(ctx context.Context, cvText, jobDescription string) (*models.EvaluationResult, error)
}

type evaluatorService struct {
	llm           LanguageModel
	promptBuilder *PromptBuilder
	logger        *zap.Logger
	maxLogLen     int
}

func NewEvaluatorService(llm LanguageModel, log *zap.Logger, maxLogLength int) EvaluatorService {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &evaluatorService{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		logger:        logger.WithModel(log, llm.Provider(), llm.Model()),
		maxLogLen:     maxLogLength,
	}
}

// Evaluate asks the model to compare the CV with the job description and
// reads a percentage and a verdict out of its reply. An unreadable reply is
// not an error; it degrades to 0% and REJECT.
func (e *evaluatorService) Evaluate(ctx context.Context, cvText, jobDescription string) (*models.EvaluationResult, error) {
	prompt, err := e.promptBuilder.BuildMatchPrompt(cvText, jobDescription)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("match evaluation request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.llm.GenerateText(ctx, prompt)
	if err != nil {
		if apperrors.IsModelUnavailable(err) {
			return nil, err
		}
		return nil, apperrors.NewModelUnavailableError(err)
	}
	if raw == "" {
		return nil, apperrors.NewModelUnavailableError(errors.New("empty response"))
	}

	e.logger.Debug("match evaluation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	result := ParseEvaluation(raw)

	e.logger.Info("match evaluated",
		zap.Int("match_percentage", result.MatchPercentage),
		zap.String("recommendation", string(result.Recommendation)),
		zap.String("percentage_source", string(result.PercentageSource)),
		zap.String("recommendation_source", string(result.RecommendationSource)),
	)

	return result, nil
}

// ParseEvaluation extracts the match percentage and recommendation from a
// free-text model reply.
func ParseEvaluation(raw string) *models.EvaluationResult {
	pct, pctSource := parseMatchPercentage(raw)
	rec, recSource := parseRecommendation(raw)

	return &models.EvaluationResult{
		RawResponse:          raw,
		MatchPercentage:      pct,
		Recommendation:       rec,
		PercentageSource:     pctSource,
		RecommendationSource: recSource,
	}
}

func parseMatchPercentage(text string) (int, models.SignalSource) {
	if m := percentagePrimary.FindStringSubmatch(text); m != nil {
		return toPercentage(m[1]), models.SourceLabeled
	}

	for _, re := range percentageFallbacks {
		if m := re.FindStringSubmatch(text); m != nil {
			return toPercentage(m[1]), models.SourceFallback
		}
	}

	return 0, models.SourceDefault
}

// toPercentage clamps to [0,100]; digit runs too long for an int count as 100.
func toPercentage(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n > 100 {
		return 100
	}
	return n
}

func parseRecommendation(text string) (models.Recommendation, models.SignalSource) {
	for i, re := range recommendationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			source := models.SourceLabeled
			if i >= 2 {
				source = models.SourceFallback
			}
			return models.ParseRecommendation(m[1]), source
		}
	}

	if acceptKeyword.MatchString(text) {
		return models.RecommendationAccept, models.SourceKeyword
	}

	return models.RecommendationReject, models.SourceDefault
}
