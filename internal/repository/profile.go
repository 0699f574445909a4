package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialhub/internal/model"
)

// profileSelect joins the owner's username and computes follow counts.
const profileSelect = `
	SELECT p.id, p.user_id, u.username, p.bio, p.profile_picture, p.created_at, p.updated_at,
	       (SELECT COUNT(*) FROM follows f WHERE f.following_id = p.user_id) AS followers_count,
	       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = p.user_id) AS following_count
	FROM profiles p
	JOIN users u ON u.id = p.user_id
`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, bio, profile_picture)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.UserID, p.Bio, p.ProfilePicture).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	return r.getOne(ctx, profileSelect+` WHERE p.id = $1`, id)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	return r.getOne(ctx, profileSelect+` WHERE p.user_id = $1`, userID)
}

func (r *profileRepository) getOne(ctx context.Context, query string, arg int64) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []int64) ([]model.Profile, error) {
	if len(userIDs) == 0 {
		return []model.Profile{}, nil
	}
	var profiles []model.Profile
	query := profileSelect + ` WHERE p.user_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &profiles, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("failed to get profiles by user ids: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) List(ctx context.Context, page model.Page) ([]model.Profile, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	profiles := []model.Profile{}
	query := profileSelect + ` ORDER BY p.id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &profiles, query, page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, total, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles SET bio = $1, profile_picture = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.Bio, p.ProfilePicture, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrProfileNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return expectOneRow(result, model.ErrProfileNotFound)
}

func (r *profileRepository) ListFollowers(ctx context.Context, userID int64) ([]model.Profile, error) {
	query := profileSelect + `
		JOIN follows fl ON fl.follower_id = p.user_id
		WHERE fl.following_id = $1
		ORDER BY fl.created_at DESC
	`
	profiles := []model.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) ListFollowing(ctx context.Context, userID int64) ([]model.Profile, error) {
	query := profileSelect + `
		JOIN follows fl ON fl.following_id = p.user_id
		WHERE fl.follower_id = $1
		ORDER BY fl.created_at DESC
	`
	profiles := []model.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return profiles, nil
}
