package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/services"
)

type ApplicationHandler struct {
	applications     services.ApplicationService
	validator        *services.SubmissionValidator
	sessions         *session.Store
	maxFileSize      int64
	defaultThreshold int
	logger           *zap.Logger
}

func NewApplicationHandler(
	applications services.ApplicationService,
	validator *services.SubmissionValidator,
	sessions *session.Store,
	maxFileSize int64,
	defaultThreshold int,
	log *zap.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		applications:     applications,
		validator:        validator,
		sessions:         sessions,
		maxFileSize:      maxFileSize,
		defaultThreshold: defaultThreshold,
		logger:           logger.OrNop(log),
	}
}

// HandleSubmit handles POST /applications
func (h *ApplicationHandler) HandleSubmit(c *fiber.Ctx) error {
	sid, err := sessionID(h.sessions, c)
	if err != nil {
		h.logger.Error("session unavailable", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return validationFailed(c, "cv file is required")
	}

	if cvFile.Size > h.maxFileSize {
		return validationFailed(c, fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize))
	}

	threshold := h.defaultThreshold
	if raw := strings.TrimSpace(c.FormValue("match_threshold")); raw != "" {
		threshold, err = strconv.Atoi(raw)
		if err != nil {
			return validationFailed(c, "match_threshold must be an integer")
		}
	}

	content, err := readFormFile(cvFile, h.maxFileSize)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SubmitResponse{
			Success: false,
			Message: fmt.Sprintf("failed to read CV file: %v", err),
			Code:    string(apperrors.ErrCodeValidationFailed),
		})
	}

	sub := models.Submission{
		SessionID:      sid,
		CV:             models.Document{Filename: cvFile.Filename, Content: content},
		ApplicantName:  strings.TrimSpace(c.FormValue("applicant_name")),
		ApplicantEmail: strings.TrimSpace(c.FormValue("applicant_email")),
		JobTitle:       strings.TrimSpace(c.FormValue("job_title")),
		JobDescription: c.FormValue("job_description"),
		MatchThreshold: threshold,
	}

	if err := h.validator.Validate(sub); err != nil {
		return validationFailed(c, err.Error())
	}

	result := h.applications.Process(c.UserContext(), sub)
	if !result.Success {
		return c.Status(statusForError(result.Err)).JSON(models.SubmitResponse{
			Success: false,
			Message: result.Message,
			Code:    string(apperrors.CodeOf(result.Err)),
		})
	}

	resp := models.SubmitResponse{
		Success: true,
		Message: result.Message,
		Record:  result.Record,
	}
	if result.Notification != nil {
		resp.Email = &models.EmailPreview{
			To:      sub.ApplicantEmail,
			Subject: result.Notification.Subject,
			Body:    result.Notification.Body,
		}
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func readFormFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	return content, nil
}

func validationFailed(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.SubmitResponse{
		Success: false,
		Message: message,
		Code:    string(apperrors.ErrCodeValidationFailed),
	})
}

func statusForError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidationFailed:
		return fiber.StatusBadRequest
	case apperrors.ErrCodeDocumentParse:
		return fiber.StatusUnprocessableEntity
	case apperrors.ErrCodeModelUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
