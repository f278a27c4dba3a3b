package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/count-game-api/internal/model"
)

// MemoryUserRepo is an in-process credential store for local runs and tests.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	byID    map[uint64]model.User
	byName  map[string]uint64
	byEmail map[string]uint64
	now     func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[uint64]model.User),
		byName:  make(map[string]uint64),
		byEmail: make(map[string]uint64),
		now:     time.Now,
	}
}

func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id uint64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, username, email, passwordHash string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[username]; ok {
		return model.User{}, ErrUsernameExists
	}
	if _, ok := r.byEmail[email]; ok {
		return model.User{}, ErrEmailExists
	}
	r.nextID++
	u := model.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC().Truncate(time.Second),
	}
	r.byID[u.ID] = u
	r.byName[username] = u.ID
	r.byEmail[email] = u.ID
	return u, nil
}

// Delete removes a user and is only used to exercise stale-token behavior.
func (r *MemoryUserRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, u.Username)
	delete(r.byEmail, u.Email)
	return nil
}

// MemoryHighscoreRepo keeps highscores in memory. Usernames for the
// leaderboard are resolved through the paired MemoryUserRepo.
type MemoryHighscoreRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]model.Highscore
	users  *MemoryUserRepo
}

func NewMemoryHighscoreRepo(users *MemoryUserRepo) *MemoryHighscoreRepo {
	return &MemoryHighscoreRepo{rows: make(map[uint64]model.Highscore), users: users}
}

func (r *MemoryHighscoreRepo) Create(_ context.Context, userID uint64, score int64, date time.Time) (model.Highscore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h := model.Highscore{ID: r.nextID, UserID: userID, Score: score, Date: date.UTC().Truncate(time.Second)}
	r.rows[h.ID] = h
	return h, nil
}

func (r *MemoryHighscoreRepo) ListByUser(_ context.Context, userID uint64, skip, limit int) ([]model.Highscore, error) {
	r.mu.RLock()
	var all []model.Highscore
	for _, h := range r.rows {
		if h.UserID == userID {
			all = append(all, h)
		}
	}
	r.mu.RUnlock()
	sortHighscores(all)
	return page(all, skip, limit), nil
}

func (r *MemoryHighscoreRepo) Get(_ context.Context, userID, id uint64) (model.Highscore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.rows[id]
	if !ok || h.UserID != userID {
		return model.Highscore{}, ErrNotFound
	}
	return h, nil
}

func (r *MemoryHighscoreRepo) Update(_ context.Context, userID, id uint64, score int64, date *time.Time) (model.Highscore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok || h.UserID != userID {
		return model.Highscore{}, ErrNotFound
	}
	h.Score = score
	if date != nil {
		h.Date = date.UTC().Truncate(time.Second)
	}
	r.rows[id] = h
	return h, nil
}

func (r *MemoryHighscoreRepo) Delete(_ context.Context, userID, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryHighscoreRepo) Leaderboard(ctx context.Context, skip, limit int) ([]model.LeaderboardEntry, error) {
	r.mu.RLock()
	all := make([]model.Highscore, 0, len(r.rows))
	for _, h := range r.rows {
		all = append(all, h)
	}
	r.mu.RUnlock()
	sortHighscores(all)

	out := make([]model.LeaderboardEntry, 0, limit)
	for _, h := range all {
		u, err := r.users.FindByID(ctx, h.UserID)
		if err != nil {
			continue // inner join: orphaned rows are skipped
		}
		out = append(out, model.LeaderboardEntry{Highscore: h, Username: u.Username})
	}
	return page(out, skip, limit), nil
}

func sortHighscores(hs []model.Highscore) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Score != hs[j].Score {
			return hs[i].Score > hs[j].Score
		}
		return hs[i].ID < hs[j].ID
	})
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
