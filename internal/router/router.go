// Package router builds the Echo instance and registers every route of the API.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/config"
	"github.com/iliyamo/count-game-api/internal/handler"
	"github.com/iliyamo/count-game-api/internal/metrics"
	"github.com/iliyamo/count-game-api/internal/middleware"
)

// Deps carries everything the routes need. Cache may be nil.
type Deps struct {
	Config     config.Config
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	Auth       *handler.AuthHandler
	Highscores *handler.HighscoreHandler
	Cache      *middleware.ResponseCache
}

// New returns a fully configured Echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(corsConfig(d.Config.CORS)))
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}
	e.Use(middleware.RequestLogger(d.Log, "/api/health"))

	e.GET("/", handler.Root(d.Config.AppName, d.Config.AppVersion))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	a := api.Group("/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.GET("/me", d.Auth.Me)

	h := api.Group("/highscores")
	h.POST("", d.Highscores.Create)
	h.GET("", d.Highscores.List)
	// Only the public leaderboard is cached; per-user pages depend on the
	// Authorization header which is not part of the cache key.
	h.GET("/leaderboard", d.Highscores.Leaderboard, d.Cache.Middleware())
	h.GET("/:id", d.Highscores.Get)
	h.PUT("/:id", d.Highscores.Update)
	h.DELETE("/:id", d.Highscores.Delete)

	return e
}

// corsConfig maps the "*" wildcard for methods and headers onto echo's
// defaults, which already allow every standard method and reflect the
// requested headers.
func corsConfig(c config.CORSConfig) echomw.CORSConfig {
	cfg := echomw.CORSConfig{
		AllowOrigins:     c.Origins,
		AllowCredentials: c.AllowCredentials,
	}
	if !isWildcard(c.Methods) {
		cfg.AllowMethods = c.Methods
	} else {
		cfg.AllowMethods = []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		}
	}
	if !isWildcard(c.Headers) {
		cfg.AllowHeaders = c.Headers
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	return cfg
}

func isWildcard(vals []string) bool {
	return len(vals) == 0 || (len(vals) == 1 && vals[0] == "*")
}
