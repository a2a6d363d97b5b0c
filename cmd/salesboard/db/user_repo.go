package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/service"
)

type UserRepoPG struct {
	db *sql.DB
}

func NewUserRepoPG(db *sql.DB) *UserRepoPG {
	return &UserRepoPG{db: db}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, date_joined`

// CreateUser inserts u and fills in its generated id and join date. A concurrent registration
// of the same username surfaces as service.ErrUserExists.
func (r *UserRepoPG) CreateUser(ctx context.Context, u *models.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, is_active, date_joined`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
	).Scan(&u.ID, &u.IsActive, &u.DateJoined)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepoPG) IsUsernameExist(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepoPG) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *UserRepoPG) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *UserRepoPG) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsActive, &u.DateJoined,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
