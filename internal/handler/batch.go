package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/validation"
)

const (
	defaultBatchPage  = 1
	defaultBatchLimit = 20
)

// GET /recommendations/batch?page=&limit=
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	q, err := parseBatchQuery(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), q.Page, q.Limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseBatchQuery applies defaults for absent parameters. Non-integer values and
// out-of-range values are both reported as validation errors.
func parseBatchQuery(values url.Values) (domain.BatchQuery, error) {
	q := domain.BatchQuery{Page: defaultBatchPage, Limit: defaultBatchLimit}

	var fields []validation.FieldError
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &q.Page},
		{"limit", &q.Limit},
	} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{
				Field:   p.name,
				Tag:     "integer",
				Message: fmt.Sprintf("%s must be an integer", p.name),
			})
			continue
		}
		*p.dst = n
	}
	if len(fields) > 0 {
		return q, &validation.RequestValidationError{Fields: fields}
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		return q, verr
	}
	return q, nil
}
