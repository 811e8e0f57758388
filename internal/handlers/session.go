package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// sessionID returns the caller's session id, issuing a cookie for new callers.
func sessionID(store *session.Store, c *fiber.Ctx) (string, error) {
	sess, err := store.Get(c)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	id := sess.ID()
	if err := sess.Save(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return id, nil
}
