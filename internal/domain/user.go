package domain

import "time"

// UserProfile is what a user last saved through /favorites/update.
type UserProfile struct {
	UserID     string    `json:"user_id"`
	Favorites  []string  `json:"favorites"`
	Categories []string  `json:"categories"`
	UpdatedAt  time.Time `json:"updated_at"`
}
