package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, username, password_hash, first_name, last_name, active, role`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, password_hash, first_name, last_name, active, role)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createUser, u.ID, u.Username, u.HashedPassword, u.FirstName, u.LastName, u.Active, u.Role)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case isUniqueViolation(err):
		return user, apperrors.ErrUserAlreadyExists
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT ` + userColumns + ` FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	return collectUser(rows)
}

const listUsernames = `-- name: ListUsernames
SELECT username FROM users
WHERE username = $1 OR starts_with(username, $1 || '.')
`

func (r *UserRepo) ListUsernames(ctx context.Context, base string) ([]string, error) {
	rows, _ := r.DB.Query(ctx, listUsernames, base)
	usernames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return usernames, nil
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
ORDER BY username
`

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, _ := r.DB.Query(ctx, listUsers)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

const updateUser = `-- name: UpdateUser
UPDATE users
SET first_name = $2, last_name = $3, active = $4
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser, u.ID, u.FirstName, u.LastName, u.Active)
	return collectUser(rows)
}

const setPassword = `-- name: SetPassword
UPDATE users SET password_hash = $2
WHERE id = $1
`

func (r *UserRepo) SetPassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	tag, err := r.DB.Exec(ctx, setPassword, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE username = $1
`

// Delete user with everything attached to it (profiles, tokens, trainings)
func (r *UserRepo) DeleteUser(ctx context.Context, username string) error {
	tag, err := r.DB.Exec(ctx, deleteUser, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.UserNotFound(username)
	}
	return nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.HashedPassword, &u.FirstName, &u.LastName, &u.Active, &u.Role)
	return u, err
}
