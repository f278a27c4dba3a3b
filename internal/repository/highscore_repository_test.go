package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var highscoreCols = []string{"id", "user_id", "score", "date"}

func TestHighscoreRepo_Create(t *testing.T) {
	_, scores, mock := newMock(t)
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO highscores (user_id, score, date) VALUES (?,?,?)")).
		WithArgs(uint64(1), int64(150), date).
		WillReturnResult(sqlmock.NewResult(3, 1))

	h, err := scores.Create(context.Background(), 1, 150, date)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), h.ID)
	assert.Equal(t, uint64(1), h.UserID)
	assert.Equal(t, int64(150), h.Score)
	assert.Equal(t, date, h.Date)
}

func TestHighscoreRepo_CreateTruncatesToSeconds(t *testing.T) {
	_, scores, mock := newMock(t)
	date := time.Date(2025, 5, 1, 10, 0, 0, 987654321, time.UTC)
	stored := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO highscores").
		WithArgs(uint64(1), int64(7), stored).
		WillReturnResult(sqlmock.NewResult(4, 1))

	h, err := scores.Create(context.Background(), 1, 7, date)
	require.NoError(t, err)
	assert.Equal(t, stored, h.Date)
}

func TestHighscoreRepo_ListByUser(t *testing.T) {
	_, scores, mock := newMock(t)
	d := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM highscores WHERE user_id=? ORDER BY score DESC, id ASC LIMIT ? OFFSET ?")).
		WithArgs(uint64(1), 20, 0).
		WillReturnRows(sqlmock.NewRows(highscoreCols).
			AddRow(5, 1, 300, d).
			AddRow(2, 1, 100, d))

	hs, err := scores.ListByUser(context.Background(), 1, 0, 20)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, int64(300), hs[0].Score)
	assert.Equal(t, uint64(2), hs[1].ID)
}

func TestHighscoreRepo_GetNotOwned(t *testing.T) {
	_, scores, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM highscores WHERE id=? AND user_id=?")).
		WithArgs(uint64(5), uint64(2)).
		WillReturnRows(sqlmock.NewRows(highscoreCols))

	_, err := scores.Get(context.Background(), 2, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHighscoreRepo_UpdateKeepsDateWhenNil(t *testing.T) {
	_, scores, mock := newMock(t)
	d := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM highscores WHERE id=? AND user_id=?")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(sqlmock.NewRows(highscoreCols).AddRow(5, 1, 100, d))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE highscores SET score=?, date=? WHERE id=? AND user_id=?")).
		WithArgs(int64(250), d, uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h, err := scores.Update(context.Background(), 1, 5, 250, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(250), h.Score)
	assert.Equal(t, d, h.Date)
}

func TestHighscoreRepo_UpdateWithDate(t *testing.T) {
	_, scores, mock := newMock(t)
	old := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	newDate := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM highscores WHERE id").
		WillReturnRows(sqlmock.NewRows(highscoreCols).AddRow(5, 1, 100, old))
	mock.ExpectExec("UPDATE highscores").
		WithArgs(int64(10), newDate, uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h, err := scores.Update(context.Background(), 1, 5, 10, &newDate)
	require.NoError(t, err)
	assert.Equal(t, newDate, h.Date)
}

func TestHighscoreRepo_UpdateRowGoneBeforeWrite(t *testing.T) {
	_, scores, mock := newMock(t)
	d := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM highscores WHERE id").
		WillReturnRows(sqlmock.NewRows(highscoreCols).AddRow(5, 1, 100, d))
	mock.ExpectExec("UPDATE highscores").
		WithArgs(int64(10), d, uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := scores.Update(context.Background(), 1, 5, 10, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHighscoreRepo_Delete(t *testing.T) {
	_, scores, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM highscores WHERE id=? AND user_id=?")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM highscores WHERE id=? AND user_id=?")).
		WithArgs(uint64(5), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, scores.Delete(context.Background(), 1, 5))
	assert.ErrorIs(t, scores.Delete(context.Background(), 2, 5), ErrNotFound)
}

func TestHighscoreRepo_Leaderboard(t *testing.T) {
	_, scores, mock := newMock(t)
	d := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("JOIN users u ON u.id = h.user_id").
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "score", "date", "username"}).
			AddRow(1, 2, 900, d, "bob").
			AddRow(4, 1, 500, d, "alice"))

	entries, err := scores.Leaderboard(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, int64(900), entries[0].Score)
	assert.Equal(t, uint64(1), entries[1].UserID)
}
