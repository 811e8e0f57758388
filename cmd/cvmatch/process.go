package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/metrics"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
	"alfredoptarigan/cv-matcher/internal/services"
)

const cliSessionID = "cli"

var errApplicationFailed = errors.New("application processing failed")

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Evaluate one CV against a job description and email the applicant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("cv", "", "path to the applicant's CV (PDF)")
	processCmd.Flags().String("name", "", "applicant name")
	processCmd.Flags().String("email", "", "applicant email address")
	processCmd.Flags().String("job-title", "", "job title")
	processCmd.Flags().String("job-description-file", "", "path to a text file with the job description")
	processCmd.Flags().Int("threshold", 0, "minimum match percentage to accept (default from DEFAULT_MATCH_THRESHOLD)")
	processCmd.Flags().Bool("dry-run", false, "compose the email but do not send it")
	processCmd.Flags().String("provider", "", "language model provider: gemini or groq")
	processCmd.Flags().String("model", "", "language model name")

	for _, name := range []string{"cv", "name", "email", "job-title", "job-description-file", "threshold", "dry-run", "provider", "model"} {
		if err := viper.BindPFlag(name, processCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding %s flag: %v", name, err))
		}
	}
}

type processOptions struct {
	CVPath             string
	Name               string
	Email              string
	JobTitle           string
	JobDescriptionFile string
	Threshold          int
	ThresholdSet       bool
	DryRun             bool
	Provider           string
	Model              string
}

func optionsFromViper(v *viper.Viper) processOptions {
	return processOptions{
		CVPath:             v.GetString("cv"),
		Name:               v.GetString("name"),
		Email:              v.GetString("email"),
		JobTitle:           v.GetString("job-title"),
		JobDescriptionFile: v.GetString("job-description-file"),
		Threshold:          v.GetInt("threshold"),
		ThresholdSet:       v.IsSet("threshold"),
		DryRun:             v.GetBool("dry-run"),
		Provider:           v.GetString("provider"),
		Model:              v.GetString("model"),
	}
}

// applyOverrides lets flags and CVMATCH_* variables take precedence over
// the plain environment configuration.
func applyOverrides(cfg *config.Config, opts processOptions) {
	if p := strings.TrimSpace(opts.Provider); p != "" {
		cfg.LLM.Provider = strings.ToLower(p)
	}
	if m := strings.TrimSpace(opts.Model); m != "" {
		cfg.LLM.Model = m
	}
}

func readSubmission(opts processOptions, defaultThreshold int) (models.Submission, error) {
	if opts.CVPath == "" {
		return models.Submission{}, apperrors.NewValidationError("--cv is required")
	}
	if opts.JobDescriptionFile == "" {
		return models.Submission{}, apperrors.NewValidationError("--job-description-file is required")
	}

	cv, err := os.ReadFile(opts.CVPath)
	if err != nil {
		return models.Submission{}, fmt.Errorf("reading CV: %w", err)
	}
	jd, err := os.ReadFile(opts.JobDescriptionFile)
	if err != nil {
		return models.Submission{}, fmt.Errorf("reading job description: %w", err)
	}

	threshold := defaultThreshold
	if opts.ThresholdSet {
		threshold = opts.Threshold
	}

	return models.Submission{
		SessionID:      cliSessionID,
		CV:             models.Document{Filename: filepath.Base(opts.CVPath), Content: cv},
		ApplicantName:  strings.TrimSpace(opts.Name),
		ApplicantEmail: strings.TrimSpace(opts.Email),
		JobTitle:       strings.TrimSpace(opts.JobTitle),
		JobDescription: string(jd),
		MatchThreshold: threshold,
	}, nil
}

func runProcess(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	opts := optionsFromViper(viper.GetViper())
	cfg := config.Load()
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	sub, err := readSubmission(opts, cfg.Pipeline.DefaultMatchThreshold)
	if err != nil {
		log.Error("reading submission", zap.Error(err))
		return err
	}

	validator, err := services.NewSubmissionValidator(cfg.Storage.MaxFileSize)
	if err != nil {
		return err
	}
	if err := validator.Validate(sub); err != nil {
		log.Error("invalid submission", zap.Error(err))
		return err
	}

	llm, err := services.NewLanguageModel(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("initializing language model", zap.Error(err))
		return err
	}

	var notifier services.NotifierService
	if opts.DryRun {
		notifier = services.NewPreviewNotifier(log)
	} else {
		notifier = services.NewSMTPNotifier(cfg.Mail, log)
	}

	svc := services.NewApplicationService(
		services.NewPDFParserService(services.NewStorageService(cfg.Storage.TempDir), log),
		services.NewEvaluatorService(llm, log, cfg.LLM.MaxLogLength),
		notifier,
		repositories.NewMemoryApplicationRepository(),
		metrics.NewPipeline(prometheus.NewRegistry()),
		log,
	)

	log.Info("starting cvmatch", zap.String("version", version), zap.Bool("dry_run", opts.DryRun))
	result := svc.Process(ctx, sub)

	if err := printResult(cmd, sub, result); err != nil {
		return err
	}
	if !result.Success {
		return errApplicationFailed
	}
	return nil
}

func printResult(cmd *cobra.Command, sub models.Submission, result *models.ProcessResult) error {
	resp := models.SubmitResponse{
		Success: result.Success,
		Message: result.Message,
		Code:    string(apperrors.CodeOf(result.Err)),
		Record:  result.Record,
	}
	if result.Notification != nil {
		resp.Email = &models.EmailPreview{
			To:      sub.ApplicantEmail,
			Subject: result.Notification.Subject,
			Body:    result.Notification.Body,
		}
	}

	pretty, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return err
}
