package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Info())
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	components, err := h.service.Health(r.Context())
	if err != nil {
		h.logger.Warn("health check degraded", zap.Error(err))
	}
	if components["storage"] != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Components: components})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "degraded", Components: components})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// POST /recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var req domain.RecommendationRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendationResponse(result))
}

// POST /favorites/update
func (h *Handler) UpdateFavorites(w http.ResponseWriter, r *http.Request) {
	var req domain.RecommendationRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.UpdateFavorites(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendationResponse(result))
}

// GET /favorites/{userID}
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "user_id is required")
		return
	}

	profile, err := h.service.GetFavorites(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GET /category/{name}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.service.ClubsByCategory(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clubs)
}

func newRecommendationResponse(result *domain.RecommendationResult) RecommendationResponse {
	recs := result.Recommendations
	if recs == nil {
		recs = []domain.ScoredClub{}
	}
	return RecommendationResponse{
		UserID:          result.UserID,
		Recommendations: recs,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(recs),
		},
	}
}
