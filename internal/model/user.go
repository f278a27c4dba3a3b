package model

import "time"

// User represents a row of the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name; also the token subject.
//	Email        – unique email address.
//	PasswordHash – bcrypt hash of the SHA-256 digest of the password.
//	CreatedAt    – registration timestamp (UTC).
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.hashed_password
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the projection of a User that may leave the service.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public drops the password hash and any other internal fields.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
