package domain

type RecommendationRequest struct {
	UserID     string   `json:"user_id" validate:"required,notblank,max=128"`
	Favorites  []string `json:"favorites" validate:"max=100,dive,required,max=128"`
	Categories []string `json:"categories" validate:"max=20,dive,required,max=64"`
	Limit      int      `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

type ScoredClub struct {
	ClubID      string  `json:"club_id"`
	ClubName    string  `json:"club_name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	MemberCount int     `json:"member_count"`
	MatchScore  float64 `json:"match_score"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	UserID          string
	Recommendations []ScoredClub
	CacheHit        bool
}

// BatchQuery holds the pagination parameters of GET /recommendations/batch.
type BatchQuery struct {
	Page  int `json:"page" validate:"min=1,max=10000"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          string       `json:"user_id"`
	Recommendations []ScoredClub `json:"recommendations,omitempty"`
	Status          BatchStatus  `json:"status"`
	Error           string       `json:"error,omitempty"`
	Message         string       `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
