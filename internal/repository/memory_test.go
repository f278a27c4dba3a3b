package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepo()

	alice, err := r.Create(ctx, "alice", "alice@example.com", "h1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), alice.ID)

	_, err = r.Create(ctx, "alice", "x@example.com", "h")
	assert.ErrorIs(t, err, ErrUsernameExists)
	_, err = r.Create(ctx, "bob", "alice@example.com", "h")
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	got, err = r.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	require.NoError(t, r.Delete(ctx, alice.ID))
	_, err = r.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, alice.ID), ErrNotFound)

	// Freed names can be registered again.
	_, err = r.Create(ctx, "alice", "alice@example.com", "h2")
	require.NoError(t, err)
}

func TestMemoryHighscoreRepo_OwnershipAndOrdering(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepo()
	alice, err := users.Create(ctx, "alice", "a@example.com", "h")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob", "b@example.com", "h")
	require.NoError(t, err)

	r := NewMemoryHighscoreRepo(users)
	now := time.Now().UTC()
	low, err := r.Create(ctx, alice.ID, 10, now)
	require.NoError(t, err)
	_, err = r.Create(ctx, alice.ID, 30, now)
	require.NoError(t, err)
	_, err = r.Create(ctx, bob.ID, 20, now)
	require.NoError(t, err)

	mine, err := r.ListByUser(ctx, alice.ID, 0, 20)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(30), mine[0].Score)
	assert.Equal(t, int64(10), mine[1].Score)

	_, err = r.Get(ctx, bob.ID, low.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Update(ctx, bob.ID, low.ID, 99, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, bob.ID, low.ID), ErrNotFound)

	updated, err := r.Update(ctx, alice.ID, low.ID, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.Score)
	assert.Equal(t, now.Truncate(time.Second), updated.Date)

	board, err := r.Leaderboard(ctx, 0, 20)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "alice", board[0].Username)
	assert.Equal(t, int64(50), board[0].Score)
	assert.Equal(t, "bob", board[2].Username)
	assert.Equal(t, int64(20), board[2].Score)

	page2, err := r.Leaderboard(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, int64(30), page2[0].Score)

	past, err := r.Leaderboard(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, past)
	assert.NotNil(t, past)
}

func TestMemoryHighscoreRepo_LeaderboardSkipsDeletedUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepo()
	alice, err := users.Create(ctx, "alice", "a@example.com", "h")
	require.NoError(t, err)
	r := NewMemoryHighscoreRepo(users)
	_, err = r.Create(ctx, alice.ID, 10, time.Now())
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, alice.ID))

	board, err := r.Leaderboard(ctx, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, board)
}
