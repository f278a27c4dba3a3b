package auth

import "errors"

// Registration and login outcomes. These are reported to the client as-is.
var (
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// ErrUnauthorized is the single outward signal for every request-time
// authentication failure. The kinds below are only ever seen wrapped in a
// *Rejection and are meant for logs and metrics.
var ErrUnauthorized = errors.New("could not validate credentials")

var (
	ErrMissingToken    = errors.New("missing token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrMalformedClaims = errors.New("malformed claims")
	ErrAccountNotFound = errors.New("account not found")
)

// Rejection is returned by the gate when a request cannot be authenticated.
// Its message is always the generic ErrUnauthorized text; Reason carries the
// fine-grained kind.
type Rejection struct {
	Reason error
}

func reject(reason error) error { return &Rejection{Reason: reason} }

func (r *Rejection) Error() string { return ErrUnauthorized.Error() }

// Unwrap exposes both the generic signal and the underlying reason so
// errors.Is matches either of them.
func (r *Rejection) Unwrap() []error { return []error{ErrUnauthorized, r.Reason} }

// RejectionReason returns the fine-grained reason behind an Unauthorized error,
// or nil when err is not a rejection.
func RejectionReason(err error) error {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return nil
}
