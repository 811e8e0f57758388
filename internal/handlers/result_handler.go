package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

type ResultHandler struct {
	repo     repositories.ApplicationRepository
	sessions *session.Store
}

func NewResultHandler(repo repositories.ApplicationRepository, sessions *session.Store) *ResultHandler {
	return &ResultHandler{
		repo:     repo,
		sessions: sessions,
	}
}

// HandleList handles GET /applications
func (h *ResultHandler) HandleList(c *fiber.Ctx) error {
	sid, err := sessionID(h.sessions, c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}

	records, err := h.repo.List(c.UserContext(), sid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load applications",
		})
	}

	rows := make([]models.ResultRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.NewResultRow(r))
	}

	return c.JSON(models.ResultsResponse{
		Count:        len(rows),
		Applications: rows,
	})
}
