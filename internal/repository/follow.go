package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followingID int64) (bool, error) {
	return toggleMembership(ctx, r.db, followsTable, followerID, followingID)
}
