package services

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

const matchPromptTemplate = `
You are an expert in HR system analyzing job applications.
TASK: Compare the CV content with the job description and determine if there's a good match.

CV CONTENT:
{{.cv_text}}

JOB DESCRIPTION:
{{.job_description}}

Evaluate the match by identifying key skills, qualifications, and experience from the job description,
and determining if they appear in the CV. Calculate an overall match percentage.

Output your analysis in the following format:
- Match Percentage: [percentage]
- Matching Skills: [comma-separated list]
- Missing Skills: [comma-separated list]
- Strengths: [brief summary]
- Gaps: [brief summary]
- Recommendation: [ACCEPT or REJECT]
`

type PromptBuilder struct {
	match prompts.PromptTemplate
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		match: prompts.NewPromptTemplate(matchPromptTemplate, []string{"cv_text", "job_description"}),
	}
}

// BuildMatchPrompt renders the CV/job comparison instruction.
func (pb *PromptBuilder) BuildMatchPrompt(cvText, jobDescription string) (string, error) {
	prompt, err := pb.match.Format(map[string]any{
		"cv_text":         cvText,
		"job_description": jobDescription,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render match prompt: %w", err)
	}
	return prompt, nil
}
