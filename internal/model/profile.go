package model

import (
	"errors"
	"time"
)

const MaxBioLength = 500

// Profile holds the public-facing part of a user. Follower counts are computed
// at read time from the follows table.
type Profile struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Username       string    `db:"username" json:"username"`
	Bio            string    `db:"bio" json:"bio"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture"`
	FollowersCount int       `db:"followers_count" json:"followers_count"`
	FollowingCount int       `db:"following_count" json:"following_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type CreateProfileRequest struct {
	Bio            string  `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

type UpdateProfileRequest struct {
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists for this user")
)
