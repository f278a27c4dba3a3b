package handler // package handler contains the HTTP handlers of the API

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/auth"
	"github.com/iliyamo/count-game-api/internal/metrics"
	"github.com/iliyamo/count-game-api/internal/model"
)

// Response details shared by several handlers.
const (
	detailUnauthorized = "Could not validate credentials"
	detailInternal     = "Internal server error"
	detailInvalidBody  = "Invalid request body"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Authenticator resolves the raw Authorization header to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (model.User, error)
}

// RequestValidator plugs go-playground/validator into echo.Context.Validate.
// Failures are reported as 422 with a readable message.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email address")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

// ErrorHandler renders every error as {"detail": "..."}. Errors that are not
// *echo.HTTPError are logged and hidden behind a generic 500.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := detailInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else {
			log.Error("unhandled error",
				zap.Error(err),
				zap.String("path", c.Request().URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"detail": msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func detail(code int, msg string) error { return echo.NewHTTPError(code, msg) }

// unauthorized answers 401 with the bearer challenge header.
func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return detail(http.StatusUnauthorized, msg)
}

// gatekeeper authenticates requests on behalf of protected handlers.
type gatekeeper struct {
	auth    Authenticator
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// requestContext bounds store calls made while serving c.
func (g gatekeeper) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), g.callTimeout())
}

func (g gatekeeper) callTimeout() time.Duration {
	if g.timeout <= 0 {
		return 5 * time.Second
	}
	return g.timeout
}

// currentUser returns the authenticated caller or a 401. The reason for a
// rejection is logged, never sent to the client.
func (g gatekeeper) currentUser(ctx context.Context, c echo.Context) (model.User, error) {
	u, err := g.auth.Authenticate(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
	if err == nil {
		g.metrics.ObserveAuth("authenticate", "ok")
		return u, nil
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		reason := "unknown"
		if r := auth.RejectionReason(err); r != nil {
			reason = r.Error()
		}
		g.log.Debug("request rejected",
			zap.String("reason", reason),
			zap.String("path", c.Request().URL.Path),
		)
		g.metrics.ObserveAuth("authenticate", "rejected")
		return model.User{}, unauthorized(c, detailUnauthorized)
	}
	g.log.Error("authenticate failed", zap.Error(err))
	g.metrics.ObserveAuth("authenticate", "error")
	return model.User{}, err
}

// pagination reads skip and limit. Negative skip becomes 0, limit is kept in
// 1..100 and defaults to 20. Non-numeric values are a 422.
func pagination(c echo.Context) (skip, limit int, err error) {
	skip, err = intParam(c, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = intParam(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}
	return skip, limit, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, detail(http.StatusUnprocessableEntity, name+" must be an integer")
	}
	return n, nil
}
