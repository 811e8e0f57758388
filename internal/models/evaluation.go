package models

import "strings"

// Recommendation is the model's own verdict, as parsed from its reply.
type Recommendation string

const (
	RecommendationAccept Recommendation = "ACCEPT"
	RecommendationReject Recommendation = "REJECT"
)

// ParseRecommendation maps a matched token to a Recommendation; anything other
// than accept reads as reject.
func ParseRecommendation(s string) Recommendation {
	if strings.EqualFold(strings.TrimSpace(s), string(RecommendationAccept)) {
		return RecommendationAccept
	}
	return RecommendationReject
}

// SignalSource records how a value was recovered from a free-text reply.
type SignalSource string

const (
	SourceLabeled  SignalSource = "labeled"
	SourceFallback SignalSource = "fallback"
	SourceKeyword  SignalSource = "keyword"
	SourceDefault  SignalSource = "default"
)

// EvaluationResult is immutable once produced by the evaluator.
type EvaluationResult struct {
	RawResponse          string         `json:"raw_response"`
	MatchPercentage      int            `json:"match_percentage"`
	Recommendation       Recommendation `json:"recommendation"`
	PercentageSource     SignalSource   `json:"percentage_source"`
	RecommendationSource SignalSource   `json:"recommendation_source"`
}

// Ambiguous reports whether either signal was inferred rather than read from
// its labeled line.
func (e EvaluationResult) Ambiguous() bool {
	return e.PercentageSource != SourceLabeled || e.RecommendationSource != SourceLabeled
}

// Decision is the final binary outcome for an application.
type Decision string

const (
	DecisionAccept Decision = "Accept"
	DecisionReject Decision = "Reject"
)

func (d Decision) IsAccept() bool {
	return d == DecisionAccept
}

func (d Decision) String() string {
	return string(d)
}
