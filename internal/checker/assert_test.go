package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *Response {
	return &Response{Endpoint: "POST /recommendations", StatusCode: status, Body: []byte(body)}
}

func TestCheckRecommendations(t *testing.T) {
	recs, err := checkRecommendations(response(200,
		`{"recommendations":[{"club_id":"game_dev_osu","club_name":"Game Development Club","match_score":0.71},{"id":"x","club_name":"X","match_score":1}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Recommendation{ID: "game_dev_osu", Name: "Game Development Club", Score: 0.71}, recs[0])
	assert.Equal(t, "x", recs[1].ID)

	empty, err := checkRecommendations(response(200, `{"recommendations":[]}`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCheckRecommendationsViolations(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		field  string
		reason string
	}{
		{"wrong status", 500, `{}`, "", "expected status 200, got 500"},
		{"not json", 200, `oops`, "", "body is not valid JSON"},
		{"array body", 200, `[]`, "", "expected a JSON object, got array"},
		{"missing list", 200, `{"results":[]}`, "recommendations", "missing"},
		{"null list", 200, `{"recommendations":null}`, "recommendations", "expected array, got null"},
		{"element not object", 200, `{"recommendations":["coding_club"]}`, "recommendations.0", "expected object, got string"},
		{"missing name", 200, `{"recommendations":[{"match_score":0.5}]}`, "recommendations.0.club_name", "missing"},
		{"score as string", 200, `{"recommendations":[{"club_name":"A","match_score":"0.5"}]}`, "recommendations.0.match_score", "expected number, got string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkRecommendations(response(tt.status, tt.body))
			var cerr *ContractError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
			assert.Contains(t, cerr.Reason, tt.reason)
		})
	}
}

func TestCheckClubList(t *testing.T) {
	clubs, err := checkClubList(response(200, `[{"id":"robotics_club","name":"Robotics Club","category":"Engineering"}]`))
	require.NoError(t, err)
	assert.Equal(t, []ClubRef{{ID: "robotics_club", Name: "Robotics Club", Category: "Engineering"}}, clubs)

	_, err = checkClubList(response(200, `{"clubs":[]}`))
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "expected array, got object", cerr.Reason)

	_, err = checkClubList(response(200, `[{"id":"a"}]`))
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "0.name", cerr.Field)
}

func TestCheckErrorDetail(t *testing.T) {
	assert.NoError(t, checkErrorDetail(response(422, `{"error":"validation_error","detail":"user_id is required"}`)))
	assert.NoError(t, checkErrorDetail(response(422, `{"detail":[{"loc":["body","user_id"],"msg":"field required"}]}`)))
	assert.Error(t, checkErrorDetail(response(200, `{"recommendations":[]}`)))
	assert.Error(t, checkErrorDetail(response(400, `{"error":"bad"}`)))
	assert.Error(t, checkErrorDetail(response(500, `Internal Server Error`)))
}

func TestExpectExcluded(t *testing.T) {
	resp := response(200, `{}`)
	recs := []Recommendation{{ID: "a"}, {ID: ""}, {ID: "b"}}

	assert.NoError(t, expectExcluded(resp, recs, "c"))
	assert.NoError(t, expectExcluded(resp, recs))

	err := expectExcluded(resp, recs, "b")
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "recommendations.2", cerr.Field)
}
