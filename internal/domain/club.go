package domain

import "time"

type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	MemberCount int       `json:"member_count"`
	FoundedAt   time.Time `json:"founded_at"`
}
