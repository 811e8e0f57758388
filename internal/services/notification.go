package services

import (
	"fmt"

	"alfredoptarigan/cv-matcher/internal/models"
)

const acceptanceBody = `Dear %s,

We are pleased to inform you that your CV has been reviewed and shows a strong match with our %s position.
We would like to invite you to the next stage of our recruitment process.
Our team will contact you shortly with further details.

Before that you need to complete this MCQ based test.
MCQs.
1. What is the capital of France?
Option A: Paris
Option B: London
Option C: New York
Option D: Tokyo

Best regards,
Recruitment Team
`

const rejectionBody = `Dear %s,

Thank you for your interest in the %s position.
After careful review of your application, we regret to inform you that we will not be moving forward with your candidacy at this time.
We appreciate your interest in our company and wish you the best in your job search.

Best regards,
Recruitment Team
`

// ComposeNotification renders the applicant email for a decision. Name and
// title are inserted verbatim and must be treated as untrusted text by
// anything that renders the result.
func ComposeNotification(decision models.Decision, applicantName, jobTitle string) models.Notification {
	if decision.IsAccept() {
		return models.Notification{
			Subject: fmt.Sprintf("Congratulations! Your Application for %s", jobTitle),
			Body:    fmt.Sprintf(acceptanceBody, applicantName, jobTitle),
		}
	}

	return models.Notification{
		Subject: fmt.Sprintf("Regarding your application for %s", jobTitle),
		Body:    fmt.Sprintf(rejectionBody, applicantName, jobTitle),
	}
}
