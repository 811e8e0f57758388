package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	AppName    = "CV Matcher API"
	AppVersion = "1.0.0"
)

// Routes groups what RegisterRoutes mounts.
type Routes struct {
	Applications *ApplicationHandler
	Results      *ResultHandler
	Gatherer     prometheus.Gatherer
}

func RegisterRoutes(app *fiber.App, r Routes) {
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/applications", r.Applications.HandleSubmit)
	api.Get("/applications", r.Results.HandleList)

	if r.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": AppName,
			"version": AppVersion,
			"endpoints": []string{
				"POST /api/v1/applications",
				"GET /api/v1/applications",
				"GET /api/v1/health",
				"GET /metrics",
			},
		})
	})
}

// ErrorHandler renders unhandled errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}
