package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/metrics"
	"github.com/iliyamo/count-game-api/internal/model"
	"github.com/iliyamo/count-game-api/internal/queue"
	"github.com/iliyamo/count-game-api/internal/repository"
)

const detailHighscoreNotFound = "Highscore not found"

// HighscoreStore is implemented by repository.HighscoreRepo and
// repository.MemoryHighscoreRepo.
type HighscoreStore interface {
	Create(ctx context.Context, userID uint64, score int64, date time.Time) (model.Highscore, error)
	ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.Highscore, error)
	Get(ctx context.Context, userID, id uint64) (model.Highscore, error)
	Update(ctx context.Context, userID, id uint64, score int64, date *time.Time) (model.Highscore, error)
	Delete(ctx context.Context, userID, id uint64) error
	Leaderboard(ctx context.Context, skip, limit int) ([]model.LeaderboardEntry, error)
}

// EventPublisher announces highscore changes to other consumers.
type EventPublisher interface {
	PublishHighscoreChanged(ctx context.Context, ev queue.HighscoreChangedEvent) error
}

// CachePurger drops cached leaderboard pages.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// HighscoreHandler serves the per-user highscore CRUD and the public
// leaderboard.
type HighscoreHandler struct {
	gatekeeper
	store     HighscoreStore
	publisher EventPublisher // nil when no broker is configured
	cache     CachePurger    // nil when caching is off
	now       func() time.Time
}

func NewHighscoreHandler(store HighscoreStore, authn Authenticator, publisher EventPublisher, cache CachePurger,
	log *zap.Logger, m *metrics.Metrics, timeout time.Duration) *HighscoreHandler {
	return &HighscoreHandler{
		gatekeeper: gatekeeper{auth: authn, log: log.Named("highscores"), metrics: m, timeout: timeout},
		store:      store,
		publisher:  publisher,
		cache:      cache,
		now:        time.Now,
	}
}

// highscoreReq is used by both create and update. Date is optional.
type highscoreReq struct {
	Score *int64     `json:"score" validate:"required,gte=0"`
	Date  *time.Time `json:"date"`
}

// Create records a new result for the caller. Date defaults to now (UTC).
func (h *HighscoreHandler) Create(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	date := h.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	hs, err := h.store.Create(ctx, u.ID, *req.Score, date)
	if err != nil {
		return err
	}
	h.changed(ctx, hs, queue.ActionCreated)
	return c.JSON(http.StatusCreated, hs)
}

// List returns the caller's results, best first.
func (h *HighscoreHandler) List(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	items, err := h.store.ListByUser(ctx, u.ID, skip, limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.Highscore{}
	}
	return c.JSON(http.StatusOK, items)
}

// Leaderboard lists every user's results joined with usernames. Public.
func (h *HighscoreHandler) Leaderboard(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	items, err := h.store.Leaderboard(ctx, skip, limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.LeaderboardEntry{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one of the caller's results.
func (h *HighscoreHandler) Get(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	id, err := highscoreID(c)
	if err != nil {
		return err
	}
	hs, err := h.store.Get(ctx, u.ID, id)
	if err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, hs)
}

// Update replaces the score and, when given, the date of one of the caller's
// results.
func (h *HighscoreHandler) Update(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	id, err := highscoreID(c)
	if err != nil {
		return err
	}
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	if req.Date != nil {
		d := req.Date.UTC()
		req.Date = &d
	}

	hs, err := h.store.Update(ctx, u.ID, id, *req.Score, req.Date)
	if err != nil {
		return notFoundOr(err)
	}
	h.changed(ctx, hs, queue.ActionUpdated)
	return c.JSON(http.StatusOK, hs)
}

// Delete removes one of the caller's results.
func (h *HighscoreHandler) Delete(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	id, err := highscoreID(c)
	if err != nil {
		return err
	}
	hs, err := h.store.Get(ctx, u.ID, id)
	if err != nil {
		return notFoundOr(err)
	}
	if err := h.store.Delete(ctx, u.ID, id); err != nil {
		return notFoundOr(err)
	}
	h.changed(ctx, hs, queue.ActionDeleted)
	return c.NoContent(http.StatusNoContent)
}

func (h *HighscoreHandler) bind(c echo.Context) (highscoreReq, error) {
	var req highscoreReq
	if err := c.Bind(&req); err != nil {
		return req, detail(http.StatusUnprocessableEntity, detailInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

// changed publishes an event for hs or, without a broker, purges the cache
// directly. Failures are logged and never fail the request. The write has
// already happened, so client cancellation is ignored but the call timeout
// still applies.
func (h *HighscoreHandler) changed(ctx context.Context, hs model.Highscore, action string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.callTimeout())
	defer cancel()
	if h.publisher != nil {
		ev := queue.HighscoreChangedEvent{
			HighscoreID: hs.ID,
			UserID:      hs.UserID,
			Score:       hs.Score,
			Action:      action,
			OccurredAt:  h.now().UTC().Format(time.RFC3339),
		}
		err := h.publisher.PublishHighscoreChanged(ctx, ev)
		if err == nil {
			return
		}
		h.log.Warn("publish highscore event failed, purging cache directly", zap.Error(err))
	}
	if h.cache == nil {
		return
	}
	if err := h.cache.Purge(ctx); err != nil {
		h.log.Warn("purge leaderboard cache failed", zap.Error(err))
	}
}

func highscoreID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, detail(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return id, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return detail(http.StatusNotFound, detailHighscoreNotFound)
	}
	return err
}
