package services

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/models"
)

const (
	maxNameLength           = 200
	maxJobTitleLength       = 200
	maxJobDescriptionLength = 20000
)

// SubmissionValidator checks a submission before it enters the pipeline.
type SubmissionValidator struct {
	schema *gojsonschema.Schema
}

func NewSubmissionValidator(maxFileSize int64) (*SubmissionValidator, error) {
	schemaMap := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"cv_filename", "cv_size", "applicant_email", "job_description", "match_threshold"},
		"properties": map[string]interface{}{
			"cv_filename": map[string]interface{}{
				"type":    "string",
				"pattern": `(?i)\.pdf$`,
			},
			"cv_size": map[string]interface{}{
				"type":    "integer",
				"minimum": 1,
				"maximum": maxFileSize,
			},
			"applicant_name": map[string]interface{}{
				"type":      "string",
				"maxLength": maxNameLength,
			},
			"applicant_email": map[string]interface{}{
				"type":   "string",
				"format": "email",
			},
			"job_title": map[string]interface{}{
				"type":      "string",
				"maxLength": maxJobTitleLength,
			},
			"job_description": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
				"maxLength": maxJobDescriptionLength,
			},
			"match_threshold": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
				"maximum": 100,
			},
		},
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("failed to compile submission schema: %w", err)
	}

	return &SubmissionValidator{schema: schema}, nil
}

// Validate returns a VALIDATION_FAILED error listing every violation.
func (v *SubmissionValidator) Validate(sub models.Submission) error {
	data := map[string]interface{}{
		"cv_filename":     sub.CV.Filename,
		"cv_size":         sub.CV.Size(),
		"applicant_name":  sub.ApplicantName,
		"applicant_email": sub.ApplicantEmail,
		"job_title":       sub.JobTitle,
		"job_description": strings.TrimSpace(sub.JobDescription),
		"match_threshold": sub.MatchThreshold,
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewValidationError(strings.Join(errs, "; "))
	}

	return nil
}
