package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

func TestValidateStructAcceptsValidRequest(t *testing.T) {
	req := domain.RecommendationRequest{
		UserID:     "osu_12345",
		Favorites:  []string{},
		Categories: []string{"Technology"},
	}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructMissingUserID(t *testing.T) {
	req := domain.RecommendationRequest{
		Favorites:  []string{"coding_club"},
		Categories: []string{"Technology"},
	}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "user_id", verr.Fields[0].Field)
	assert.Equal(t, "required", verr.Fields[0].Tag)
	assert.Equal(t, "user_id is required", verr.Error())
}

func TestValidateStructElementAndRangeErrors(t *testing.T) {
	req := domain.RecommendationRequest{
		UserID:    "u1",
		Favorites: []string{"coding_club", ""},
		Limit:     99,
	}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)

	msg := verr.Error()
	assert.Contains(t, msg, "favorites[1] is required")
	assert.Contains(t, msg, "limit must be at most 50")
}

func TestValidateStructTooManyCategories(t *testing.T) {
	cats := make([]string, 21)
	for i := range cats {
		cats[i] = "Cat"
	}
	verr := ValidateStruct(&domain.RecommendationRequest{UserID: "u1", Categories: cats})
	require.NotNil(t, verr)
	assert.True(t, strings.Contains(verr.Error(), "categories must contain at most 20 items"), verr.Error())
}

func TestValidateStructBlankUserID(t *testing.T) {
	verr := ValidateStruct(&domain.RecommendationRequest{UserID: "   "})
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "notblank", verr.Fields[0].Tag)
	assert.Equal(t, "user_id must not be blank", verr.Error())
}

func TestValidateStructBatchQuery(t *testing.T) {
	assert.Nil(t, ValidateStruct(&domain.BatchQuery{Page: 1, Limit: 100}))

	verr := ValidateStruct(&domain.BatchQuery{Page: 0, Limit: 101})
	require.NotNil(t, verr)
	assert.Equal(t, "page must be at least 1; limit must be at most 100", verr.Error())
}
