package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
)

type TokenRepo struct {
	DB DBTX
}

const tokenColumns = `id, user_id, access_token, refresh_token, issued_at, access_expires_at, refresh_expires_at, status`

const saveToken = `-- name: SaveToken
INSERT INTO tokens (` + tokenColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + tokenColumns

func (r *TokenRepo) Save(ctx context.Context, t models.Token) (models.Token, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, saveToken,
		t.ID, t.UserID, t.AccessToken, t.RefreshToken,
		t.IssuedAt, t.AccessExpiresAt, t.RefreshExpiresAt, t.Status,
	)
	token, err := pgx.CollectOneRow(rows, rowToToken)

	switch {
	case err == nil:
		return token, nil
	case isForeignKeyViolation(err):
		return token, apperrors.ErrUserNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const getByTokenString = `-- name: GetByTokenString
SELECT ` + tokenColumns + ` FROM tokens
WHERE access_token = $1 OR refresh_token = $1
`

func (r *TokenRepo) GetByTokenString(ctx context.Context, tokenString string) (models.Token, error) {
	rows, _ := r.DB.Query(ctx, getByTokenString, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const updateAccess = `-- name: UpdateAccess
UPDATE tokens SET access_token = $2, access_expires_at = $3
WHERE id = $1 AND status = 'active'
`

func (r *TokenRepo) UpdateAccess(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error {
	tag, err := r.DB.Exec(ctx, updateAccess, id, accessToken, expiresAt)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrTokenNotFound
	default:
		return nil
	}
}

const closeToken = `-- name: CloseToken
UPDATE tokens SET status = $2
WHERE id = $1 AND status = 'active'
`

func (r *TokenRepo) Close(ctx context.Context, id uuid.UUID, status models.TokenStatus) error {
	tag, err := r.DB.Exec(ctx, closeToken, id, status)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrTokenNotFound
	default:
		return nil
	}
}

const revokeAllForUser = `-- name: RevokeAllForUser
UPDATE tokens SET status = 'revoked'
WHERE user_id = $1 AND status = 'active'
`

func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForUser, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Tokens of deleted user are kept with NULL user_id
func rowToToken(row pgx.CollectableRow) (models.Token, error) {
	var t models.Token
	var userID *uuid.UUID
	err := row.Scan(&t.ID, &userID, &t.AccessToken, &t.RefreshToken, &t.IssuedAt, &t.AccessExpiresAt, &t.RefreshExpiresAt, &t.Status)
	if userID != nil {
		t.UserID = *userID
	}
	return t, err
}

const expireStale = `-- name: ExpireStale
UPDATE tokens SET status = 'expired'
WHERE status = 'active' AND refresh_expires_at <= $1
`

func (r *TokenRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, expireStale, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}
