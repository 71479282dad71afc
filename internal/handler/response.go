package handler

import "github.com/actuallystonmai/campusconnect-recommendation/internal/domain"

type RecommendationResponse struct {
	UserID          string                    `json:"user_id"`
	Recommendations []domain.ScoredClub       `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
