package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"socialhub/internal/model"
)

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at, revoked_at, replaced_by, device_info, ip_address`

type refreshTokenRepository struct {
	db *sqlx.DB
}

func NewRefreshTokenRepository(db *sqlx.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	err := r.db.GetContext(ctx, &token.CreatedAt, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, device_info, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.DeviceInfo, token.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := r.db.GetContext(ctx, &token, `SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return &token, nil
}

// Rotate revokes oldID and inserts next as its replacement in one statement.
// The insert only happens when oldID was still live, so two concurrent
// rotations of the same token cannot both succeed; the loser gets
// ErrRefreshTokenReused.
func (r *refreshTokenRepository) Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error {
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	err := r.db.GetContext(ctx, &next.CreatedAt, `
		WITH revoked AS (
			UPDATE refresh_tokens
			SET revoked_at = NOW(), replaced_by = $2
			WHERE id = $1 AND revoked_at IS NULL
			RETURNING user_id
		)
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, device_info, ip_address)
		SELECT $2, user_id, $3, $4, $5, $6 FROM revoked
		RETURNING created_at`,
		oldID, next.ID, next.TokenHash, next.ExpiresAt, next.DeviceInfo, next.IPAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrRefreshTokenReused
	}
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return nil
}

// Revoke revokes a live token. Revoking an unknown or already revoked token
// reports ErrRefreshTokenNotFound.
func (r *refreshTokenRepository) Revoke(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return expectOneRow(result, model.ErrRefreshTokenNotFound)
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens of user %d: %w", userID, err)
	}
	return nil
}

// DeleteExpired removes tokens whose expiry is more than olderThan in the past.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < NOW() - make_interval(secs => $1)`, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
