package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/count-game-api/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// UserRepo is the MySQL credential store.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const selectUser = "SELECT id,username,email,hashed_password,created_at FROM users"

// FindByUsername fetches a user by exact username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(ctx, selectUser+" WHERE username=? LIMIT 1", username)
}

// FindByEmail fetches a user by exact email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(ctx, selectUser+" WHERE email=? LIMIT 1", email)
}

// FindByID fetches a user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, selectUser+" WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns it with its generated ID.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	created := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, hashed_password, created_at) VALUES (?,?,?,?)",
		username, email, passwordHash, created)
	if err != nil {
		return model.User{}, duplicateKey(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           uint64(id),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    created,
	}, nil
}

// duplicateKey maps ER_DUP_ENTRY on one of the users unique indexes to the
// matching sentinel. The index names come from database.schema.
func duplicateKey(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	if strings.Contains(me.Message, "uq_users_email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}
