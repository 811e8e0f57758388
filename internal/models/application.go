package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one application handed to the pipeline.
type Submission struct {
	SessionID      string
	CV             Document
	ApplicantName  string
	ApplicantEmail string
	JobTitle       string
	JobDescription string
	MatchThreshold int
}

// Notification is the email composed for an applicant.
type Notification struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ApplicationRecord is the outcome kept for the session's results table.
type ApplicationRecord struct {
	ID             uuid.UUID `json:"id"`
	ApplicantName  string    `json:"applicant_name"`
	ApplicantEmail string    `json:"applicant_email"`
	JobTitle       string    `json:"job_title"`
	// MatchPercentage is clamped to 100; the raw figure stays in Analysis.
	MatchPercentage int       `json:"match_percentage"`
	Recommendation  string    `json:"recommendation"`
	EmailSent       bool      `json:"email_sent"`
	EmailSkipped    bool      `json:"email_skipped,omitempty"`
	EmailMessage    string    `json:"email_message"`
	Analysis        string    `json:"analysis"`
	Ambiguous       bool      `json:"ambiguous"`
	CreatedAt       time.Time `json:"created_at"`
}

// Email status values shown in the results table.
const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped"
)

func (r ApplicationRecord) EmailStatus() string {
	switch {
	case r.EmailSent:
		return EmailStatusSent
	case r.EmailSkipped:
		return EmailStatusSkipped
	default:
		return EmailStatusFailed
	}
}

// ProcessResult is what the orchestrator returns for one submission.
type ProcessResult struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message,omitempty"`
	Record       *ApplicationRecord `json:"record,omitempty"`
	Notification *Notification      `json:"notification,omitempty"`
	Err          error              `json:"-"`
}
