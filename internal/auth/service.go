// Package auth holds credential storage contracts, password hashing, session
// token issuance/validation and the request-time gate, plus the register and
// login flows built on top of them.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/count-game-api/internal/model"
	"github.com/iliyamo/count-game-api/internal/repository"
)

// timingDummy is hashed once at startup so that logins for unknown usernames
// still pay for a bcrypt comparison.
const timingDummy = "count-game-timing-dummy"

// Service implements register, login and authenticate.
type Service struct {
	users     CredentialStore
	hasher    *Hasher
	tokens    *TokenService
	gate      *Gate
	dummyHash string
}

// NewService builds a Service. It fails only if the timing dummy cannot be
// hashed.
func NewService(users CredentialStore, hasher *Hasher, tokens *TokenService) (*Service, error) {
	dummy, err := hasher.Hash(timingDummy)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		gate:      NewGate(tokens, users),
		dummyHash: dummy,
	}, nil
}

// Register creates a new account. Username and email uniqueness are checked
// independently and reported as ErrDuplicateUsername / ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, username, email, password string) (model.PublicUser, error) {
	if err := s.ensureFree(ctx, s.users.FindByUsername, username, ErrDuplicateUsername); err != nil {
		return model.PublicUser{}, err
	}
	if err := s.ensureFree(ctx, s.users.FindByEmail, email, ErrDuplicateEmail); err != nil {
		return model.PublicUser{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.PublicUser{}, err
	}

	u, err := s.users.Create(ctx, username, email, hash)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return model.PublicUser{}, ErrDuplicateUsername
	case errors.Is(err, repository.ErrEmailExists):
		return model.PublicUser{}, ErrDuplicateEmail
	case err != nil:
		return model.PublicUser{}, fmt.Errorf("create user: %w", err)
	}
	return u.Public(), nil
}

func (s *Service) ensureFree(ctx context.Context, find func(context.Context, string) (model.User, error), key string, taken error) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
}

// Login checks the credentials and issues a token with the default ttl.
// An unknown username and a wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("lookup user: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return "", ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.IssueDefault(u.Username)
}

// Authenticate runs the gate against a raw Authorization header value.
func (s *Service) Authenticate(ctx context.Context, authorization string) (model.User, error) {
	return s.gate.Authenticate(ctx, authorization)
}

// CurrentIdentity projects an authenticated user to its public fields.
func (s *Service) CurrentIdentity(u model.User) model.PublicUser {
	return u.Public()
}
