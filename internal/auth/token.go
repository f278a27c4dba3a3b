package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL keeps mobile clients signed in for a month.
const DefaultTokenTTL = 30 * 24 * time.Hour

// DefaultAlgorithm is the HMAC variant used when none is configured.
const DefaultAlgorithm = "HS256"

// TokenConfig holds the process-wide signing settings. It is built once at
// startup and never mutated.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// TokenService issues and validates stateless HMAC-signed JWTs carrying the
// username as "sub". There is no revocation list: a token stays valid until
// its exp, even if the account is later removed or its password changes.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported algorithm %q (use HS256, HS384 or HS512)", alg)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Algorithm returns the JWT "alg" this service signs and accepts.
func (s *TokenService) Algorithm() string { return s.method.Alg() }

// TTL returns the default validity window.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject valid for ttl. A non-positive ttl means the
// configured default.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueDefault signs a token for subject with the default ttl.
func (s *TokenService) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, s.ttl)
}

// Validate verifies the signature and algorithm, checks expiry and returns
// the subject. Failures are ErrInvalidToken, ErrExpiredToken or
// ErrMalformedClaims.
func (s *TokenService) Validate(token string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "", ErrMalformedClaims
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrMalformedClaims
	}
	return sub, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
	}
	return s.secret, nil
}
