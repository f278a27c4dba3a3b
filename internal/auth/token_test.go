package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newTokens(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour}, WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_Config(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	require.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"})
	require.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "s", Algorithm: "none"})
	require.Error(t, err)

	s, err := NewTokenService(TokenConfig{Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "HS256", s.Algorithm())
	assert.Equal(t, DefaultTokenTTL, s.TTL())

	s, err = NewTokenService(TokenConfig{Secret: "s", Algorithm: "HS512", TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "HS512", s.Algorithm())
	assert.Equal(t, time.Minute, s.TTL())
}

func TestToken_RoundTrip(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)

	tok, err := s.Issue("alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok, ".")))

	sub, err := s.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	tok, err = s.IssueDefault("bob")
	require.NoError(t, err)
	sub, err = s.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", sub)
}

func TestToken_Claims(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)

	tok, err := s.Issue("alice", 10*time.Minute)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Unix(), iat.Unix())
	assert.Equal(t, clock.Now().Add(10*time.Minute).Unix(), exp.Unix())
}

func TestToken_Expired(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)

	tok, err := s.Issue("alice", time.Second)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = s.Validate(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestToken_ValidJustBeforeExpiry(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)

	tok, err := s.Issue("alice", time.Minute)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	sub, err := s.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestToken_TamperedSignature(t *testing.T) {
	s := newTokens(t, newClock())
	tok, err := s.Issue("alice", 0)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	// The first character carries only signature bits; the last may be padding.
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	_, err = s.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_WrongSecret(t *testing.T) {
	clock := newClock()
	other, err := NewTokenService(TokenConfig{Secret: "other"}, WithClock(clock.Now))
	require.NoError(t, err)
	tok, err := other.Issue("alice", 0)
	require.NoError(t, err)

	_, err = newTokens(t, clock).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Garbage(t *testing.T) {
	s := newTokens(t, newClock())
	for _, raw := range []string{"", "abc", "a.b.c", "....."} {
		_, err := s.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestToken_RejectsOtherAlgorithms(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)
	claims := jwt.MapClaims{
		"sub": "alice",
		"exp": jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}

	none := signRaw(t, jwt.SigningMethodNone, claims, jwt.UnsafeAllowNoneSignatureType)
	_, err := s.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512 := signRaw(t, jwt.SigningMethodHS512, claims, []byte(testSecret))
	_, err = s.Validate(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_MalformedClaims(t *testing.T) {
	clock := newClock()
	s := newTokens(t, clock)
	exp := jwt.NewNumericDate(clock.Now().Add(time.Hour))

	cases := map[string]jwt.MapClaims{
		"missing sub":    {"exp": exp},
		"empty sub":      {"sub": "", "exp": exp},
		"numeric sub":    {"sub": 42, "exp": exp},
		"missing expiry": {"sub": "alice"},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			tok := signRaw(t, jwt.SigningMethodHS256, claims, []byte(testSecret))
			_, err := s.Validate(tok)
			assert.ErrorIs(t, err, ErrMalformedClaims)
		})
	}
}
