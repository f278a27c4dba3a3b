package auth

import (
	"context"

	"github.com/iliyamo/count-game-api/internal/model"
)

// CredentialStore is the query surface the auth core needs from user storage.
//
// Lookups return repository.ErrNotFound when no user matches. Create returns
// repository.ErrUsernameExists or repository.ErrEmailExists when a unique
// constraint is violated.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (model.User, error)
}

// TokenValidator turns a raw token into its subject.
type TokenValidator interface {
	Validate(token string) (string, error)
}
