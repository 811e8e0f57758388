package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ApplicationsProcessed.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Email status labels for EmailsSent.
const (
	EmailSent    = "sent"
	EmailFailed  = "failed"
	EmailSkipped = "skipped"
)

// Pipeline holds the collectors for the application pipeline.
type Pipeline struct {
	ApplicationsProcessed *prometheus.CounterVec
	EmailsSent            *prometheus.CounterVec
	StageDuration         *prometheus.HistogramVec
	ApplicationsActive    prometheus.Gauge
}

// NewPipeline registers the pipeline collectors on reg. A nil reg yields
// collectors that are not exported anywhere.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	factory := promauto.With(reg)

	return &Pipeline{
		ApplicationsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvmatch_applications_processed_total",
				Help: "Total number of applications processed, by outcome and decision",
			},
			[]string{"outcome", "decision", "error_code"},
		),
		EmailsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvmatch_emails_total",
				Help: "Total number of applicant emails attempted, by status",
			},
			[]string{"status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cvmatch_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		ApplicationsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cvmatch_applications_active",
				Help: "Number of applications currently in the pipeline",
			},
		),
	}
}

func (p *Pipeline) ObserveStage(stage string, started time.Time) {
	p.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

func (p *Pipeline) RecordCompleted(decision, emailStatus string) {
	p.ApplicationsProcessed.WithLabelValues(OutcomeCompleted, decision, "").Inc()
	p.EmailsSent.WithLabelValues(emailStatus).Inc()
}

func (p *Pipeline) RecordFailed(errorCode string) {
	p.ApplicationsProcessed.WithLabelValues(OutcomeFailed, "", errorCode).Inc()
}
