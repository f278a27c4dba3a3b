package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is outside bcrypt's range.
const DefaultBcryptCost = 12

// Hasher turns plaintext passwords into bcrypt hashes and checks them.
//
// bcrypt only looks at the first 72 bytes of its input, so every plaintext is
// first condensed to the hex SHA-256 digest (64 bytes). Long passwords that
// share a prefix therefore never collide.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the given bcrypt cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the bcrypt work factor new hashes are produced with.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a self-describing bcrypt hash (salt and cost embedded).
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(condense(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches stored. A malformed stored hash is a
// plain mismatch.
func (h *Hasher) Verify(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), condense(plain)) == nil
}

func condense(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
