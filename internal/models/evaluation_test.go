package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecommendation(t *testing.T) {
	assert.Equal(t, RecommendationAccept, ParseRecommendation("accept"))
	assert.Equal(t, RecommendationAccept, ParseRecommendation(" ACCEPT "))
	assert.Equal(t, RecommendationReject, ParseRecommendation("Reject"))
	assert.Equal(t, RecommendationReject, ParseRecommendation("maybe"))
}

func TestEvaluationResultAmbiguous(t *testing.T) {
	clean := EvaluationResult{PercentageSource: SourceLabeled, RecommendationSource: SourceLabeled}
	assert.False(t, clean.Ambiguous())

	fallback := EvaluationResult{PercentageSource: SourceFallback, RecommendationSource: SourceLabeled}
	assert.True(t, fallback.Ambiguous())

	keyword := EvaluationResult{PercentageSource: SourceLabeled, RecommendationSource: SourceKeyword}
	assert.True(t, keyword.Ambiguous())
}

func TestApplicationRecordEmailStatus(t *testing.T) {
	assert.Equal(t, "sent", ApplicationRecord{EmailSent: true}.EmailStatus())
	assert.Equal(t, "failed", ApplicationRecord{}.EmailStatus())
	assert.Equal(t, "skipped", ApplicationRecord{EmailSkipped: true}.EmailStatus())
	assert.True(t, DecisionAccept.IsAccept())
	assert.False(t, DecisionReject.IsAccept())
}
