// Package queue defines message payloads exchanged over the message broker.
package queue

// HighscoreQueueName is the durable queue carrying HighscoreChangedEvent.
const HighscoreQueueName = "highscore.changed"

// Actions carried by HighscoreChangedEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// HighscoreChangedEvent is published after a highscore is created, updated
// or deleted. Consumers use it to invalidate derived views such as the
// cached leaderboard.
type HighscoreChangedEvent struct {
	HighscoreID uint64 `json:"highscore_id"`
	UserID      uint64 `json:"user_id"`
	Score       int64  `json:"score"`
	Action      string `json:"action"`
	OccurredAt  string `json:"occurred_at"`
}
