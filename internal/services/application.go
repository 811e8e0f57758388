package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/metrics"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

// Stage names a step of the application pipeline.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageEvaluating Stage = "evaluating"
	StageDeciding   Stage = "deciding"
	StageComposing  Stage = "composing"
	StageNotifying  Stage = "notifying"
	StageDone       Stage = "done"
)

type ApplicationService interface {
	Process(ctx context.Context, sub models.Submission) *models.ProcessResult
}

type applicationService struct {
	parser    PDFParserService
	evaluator EvaluatorService
	notifier  NotifierService
	repo      repositories.ApplicationRepository
	metrics   *metrics.Pipeline
	logger    *zap.Logger
	now       func() time.Time
}

func NewApplicationService(
	parser PDFParserService,
	evaluator EvaluatorService,
	notifier NotifierService,
	repo repositories.ApplicationRepository,
	m *metrics.Pipeline,
	log *zap.Logger,
) ApplicationService {
	if m == nil {
		m = metrics.NewPipeline(nil)
	}

	return &applicationService{
		parser:    parser,
		evaluator: evaluator,
		notifier:  notifier,
		repo:      repo,
		metrics:   m,
		logger:    logger.OrNop(log),
		now:       time.Now,
	}
}

// Process runs one submission through extraction, evaluation, decision,
// composition and delivery. Extraction and evaluation failures end the run
// without a record; a delivery failure is recorded on the record instead.
func (s *applicationService) Process(ctx context.Context, sub models.Submission) *models.ProcessResult {
	s.metrics.ApplicationsActive.Inc()
	defer s.metrics.ApplicationsActive.Dec()

	log := s.logger.With(
		zap.String("session_id", sub.SessionID),
		zap.String("applicant_email", sub.ApplicantEmail),
		zap.String("job_title", sub.JobTitle),
	)
	log.Info("processing application", zap.String("filename", sub.CV.Filename))

	// Step 1: Extract CV text
	started := time.Now()
	cvText, err := s.parser.ExtractText(ctx, sub.CV)
	s.metrics.ObserveStage(string(StageExtracting), started)
	if err != nil {
		return s.fail(log, StageExtracting, fmt.Errorf("failed to extract CV text: %w", err))
	}

	// Step 2: Evaluate against the job description
	started = time.Now()
	evaluation, err := s.evaluator.Evaluate(ctx, cvText, sub.JobDescription)
	s.metrics.ObserveStage(string(StageEvaluating), started)
	if err != nil {
		return s.fail(log, StageEvaluating, fmt.Errorf("failed to evaluate CV: %w", err))
	}
	if evaluation.Ambiguous() {
		log.Warn("model reply was not clearly labeled",
			zap.String("percentage_source", string(evaluation.PercentageSource)),
			zap.String("recommendation_source", string(evaluation.RecommendationSource)),
		)
	}

	// Step 3: Decide
	decision := Decide(evaluation.MatchPercentage, sub.MatchThreshold, evaluation.Recommendation)
	log.Debug("decision made", zap.String("stage", string(StageDeciding)), zap.String("decision", decision.String()))

	// Step 4: Compose
	notification := ComposeNotification(decision, sub.ApplicantName, sub.JobTitle)
	log.Debug("notification composed", zap.String("stage", string(StageComposing)), zap.String("subject", notification.Subject))

	// Step 5: Notify
	started = time.Now()
	delivery := s.notifier.Send(ctx, sub.ApplicantEmail, notification)
	s.metrics.ObserveStage(string(StageNotifying), started)

	record := models.ApplicationRecord{
		ID:              uuid.New(),
		ApplicantName:   sub.ApplicantName,
		ApplicantEmail:  sub.ApplicantEmail,
		JobTitle:        sub.JobTitle,
		MatchPercentage: evaluation.MatchPercentage,
		Recommendation:  decision.String(),
		EmailSent:       delivery.Sent,
		EmailSkipped:    delivery.Skipped,
		EmailMessage:    delivery.Message,
		Analysis:        evaluation.RawResponse,
		Ambiguous:       evaluation.Ambiguous(),
		CreatedAt:       s.now(),
	}

	if err := s.repo.Append(ctx, sub.SessionID, record); err != nil {
		log.Error("failed to store application record", zap.Error(err))
	}

	s.metrics.RecordCompleted(decision.String(), record.EmailStatus())

	log.Info("application processed",
		zap.String("stage", string(StageDone)),
		zap.String("record_id", record.ID.String()),
		zap.Int("match_percentage", record.MatchPercentage),
		zap.Int("threshold", sub.MatchThreshold),
		zap.String("decision", record.Recommendation),
		zap.Bool("email_sent", record.EmailSent),
	)

	return &models.ProcessResult{
		Success:      true,
		Message:      delivery.Message,
		Record:       &record,
		Notification: &notification,
	}
}

func (s *applicationService) fail(log *zap.Logger, stage Stage, err error) *models.ProcessResult {
	code := apperrors.CodeOf(err)
	s.metrics.RecordFailed(string(code))

	log.Error("application processing failed",
		zap.String("stage", string(stage)),
		zap.String("error_code", string(code)),
		zap.Error(err),
	)

	return &models.ProcessResult{
		Success: false,
		Message: err.Error(),
		Err:     err,
	}
}
