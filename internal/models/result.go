package models

// SubmitResponse is returned by POST /applications.
type SubmitResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Code    string             `json:"code,omitempty"`
	Record  *ApplicationRecord `json:"record,omitempty"`
	Email   *EmailPreview      `json:"email,omitempty"`
}

type EmailPreview struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ResultRow is one line of the results table.
type ResultRow struct {
	ID              string `json:"id"`
	Applicant       string `json:"applicant"`
	JobTitle        string `json:"job_title"`
	MatchPercentage int    `json:"match_percentage"`
	Decision        string `json:"decision"`
	EmailStatus     string `json:"email_status"`
	CreatedAt       string `json:"created_at"`
}

type ResultsResponse struct {
	Count        int         `json:"count"`
	Applications []ResultRow `json:"applications"`
}

func NewResultRow(r ApplicationRecord) ResultRow {
	return ResultRow{
		ID:              r.ID.String(),
		Applicant:       r.ApplicantName,
		JobTitle:        r.JobTitle,
		MatchPercentage: r.MatchPercentage,
		Decision:        r.Recommendation,
		EmailStatus:     r.EmailStatus(),
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
