package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/count-game-api/internal/model"
	"github.com/iliyamo/count-game-api/internal/repository"
)

// Gate authenticates a single request: it extracts the bearer token,
// validates it and resolves the subject to a stored user. Nothing is cached
// between calls.
type Gate struct {
	tokens TokenValidator
	users  CredentialStore
}

// NewGate wires a Gate.
func NewGate(tokens TokenValidator, users CredentialStore) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate takes the raw Authorization header value. Every
// authentication failure satisfies errors.Is(err, ErrUnauthorized); store
// failures other than not-found are returned as ordinary errors.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (model.User, error) {
	raw, ok := BearerToken(authorization)
	if !ok {
		return model.User{}, reject(ErrMissingToken)
	}

	username, err := g.tokens.Validate(raw)
	if err != nil {
		return model.User{}, reject(err)
	}

	u, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, reject(ErrAccountNotFound)
		}
		return model.User{}, fmt.Errorf("resolve identity: %w", err)
	}
	return u, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
