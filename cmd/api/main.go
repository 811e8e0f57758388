package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/handlers"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/metrics"
	"alfredoptarigan/cv-matcher/internal/repositories"
	"alfredoptarigan/cv-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("llm_provider", cfg.LLM.Provider))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipeline(registry)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.TempDir)
	if err := storageService.EnsureBaseDir(); err != nil {
		log.Fatal("failed to create scratch directory", zap.Error(err))
	}
	pdfParser := services.NewPDFParserService(storageService, log)

	ctx := context.Background()
	llm, err := services.NewLanguageModel(ctx, cfg.LLM, log)
	if err != nil {
		log.Fatal("failed to initialize language model", zap.Error(err))
	}
	log.Info("language model initialized", zap.String("ai_provider", llm.Provider()), zap.String("ai_model", llm.Model()))

	evaluatorService := services.NewEvaluatorService(llm, log, cfg.LLM.MaxLogLength)
	notifier := services.NewSMTPNotifier(cfg.Mail, log)
	applicationRepo := repositories.NewMemoryApplicationRepository()

	applicationService := services.NewApplicationService(
		pdfParser,
		evaluatorService,
		notifier,
		applicationRepo,
		pipelineMetrics,
		log,
	)

	validator, err := services.NewSubmissionValidator(cfg.Storage.MaxFileSize)
	if err != nil {
		log.Fatal("failed to build submission validator", zap.Error(err))
	}

	// Initialize Handlers
	sessions := session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	applicationHandler := handlers.NewApplicationHandler(
		applicationService,
		validator,
		sessions,
		cfg.Storage.MaxFileSize,
		cfg.Pipeline.DefaultMatchThreshold,
		log,
	)
	resultHandler := handlers.NewResultHandler(applicationRepo, sessions)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      handlers.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + cfg.Mail.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, handlers.Routes{
		Applications: applicationHandler,
		Results:      resultHandler,
		Gatherer:     registry,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
