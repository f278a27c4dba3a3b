package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/count-game-api/internal/model"
)

// HighscoreRepo persists game results in the `highscores` table.
type HighscoreRepo struct{ DB *sql.DB }

func NewHighscoreRepo(db *sql.DB) *HighscoreRepo { return &HighscoreRepo{DB: db} }

// Create inserts a result for userID. date is stored at second precision,
// like the DATETIME column.
func (r *HighscoreRepo) Create(ctx context.Context, userID uint64, score int64, date time.Time) (model.Highscore, error) {
	date = date.UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO highscores (user_id, score, date) VALUES (?,?,?)",
		userID, score, date)
	if err != nil {
		return model.Highscore{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Highscore{}, err
	}
	return model.Highscore{ID: uint64(id), UserID: userID, Score: score, Date: date}, nil
}

// ListByUser returns userID's results, best first.
func (r *HighscoreRepo) ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.Highscore, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,score,date FROM highscores WHERE user_id=? ORDER BY score DESC, id ASC LIMIT ? OFFSET ?",
		userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Highscore, 0, limit)
	for rows.Next() {
		var h model.Highscore
		if err := rows.Scan(&h.ID, &h.UserID, &h.Score, &h.Date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Get fetches one result if it belongs to userID.
func (r *HighscoreRepo) Get(ctx context.Context, userID, id uint64) (model.Highscore, error) {
	var h model.Highscore
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,score,date FROM highscores WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&h.ID, &h.UserID, &h.Score, &h.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Highscore{}, ErrNotFound
	}
	return h, err
}

// Update changes the score and, when date is non-nil, the date. A row deleted
// between the read and the write is reported as ErrNotFound; the DSN sets
// clientFoundRows so an unchanged row still counts as affected.
func (r *HighscoreRepo) Update(ctx context.Context, userID, id uint64, score int64, date *time.Time) (model.Highscore, error) {
	h, err := r.Get(ctx, userID, id)
	if err != nil {
		return model.Highscore{}, err
	}
	h.Score = score
	if date != nil {
		h.Date = date.UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE highscores SET score=?, date=? WHERE id=? AND user_id=?",
		h.Score, h.Date, id, userID)
	if err != nil {
		return model.Highscore{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Highscore{}, err
	}
	if n == 0 {
		return model.Highscore{}, ErrNotFound
	}
	return h, nil
}

// Delete removes a result owned by userID.
func (r *HighscoreRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM highscores WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard returns the best results across all users.
func (r *HighscoreRepo) Leaderboard(ctx context.Context, skip, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT h.id, h.user_id, h.score, h.date, u.username
		FROM highscores h
		JOIN users u ON u.id = h.user_id
		ORDER BY h.score DESC, h.id ASC
		LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Score, &e.Date, &e.Username); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
