package model

import "time"

// Highscore is a single recorded game result owned by a user.
type Highscore struct {
	ID     uint64    `json:"id"`
	UserID uint64    `json:"user_id"`
	Score  int64     `json:"score"`
	Date   time.Time `json:"date"`
}

// LeaderboardEntry is a highscore joined with its owner's username.
type LeaderboardEntry struct {
	Highscore
	Username string `json:"username"`
}
