package services

import "alfredoptarigan/cv-matcher/internal/models"

// Decide accepts when the match percentage reaches the threshold or when the
// model recommends acceptance on its own. Either signal is sufficient.
func Decide(matchPercentage, threshold int, rec models.Recommendation) models.Decision {
	if matchPercentage >= threshold || rec == models.RecommendationAccept {
		return models.DecisionAccept
	}
	return models.DecisionReject
}
