package model

import (
	"errors"
	"time"
)

// Post is a piece of authored content. Counts are computed by the repository
// from the join tables; they are never stored on the row.
type Post struct {
	ID              int64     `db:"id" json:"id"`
	AuthorID        int64     `db:"author_id" json:"author_user_id"`
	AuthorUsername  string    `db:"author_username" json:"username"`
	AuthorProfileID *int64    `db:"author_profile_id" json:"author_profile_id"`
	Content         string    `db:"content" json:"content"`
	Image           *string   `db:"image" json:"image"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	LikesCount      int       `db:"likes_count" json:"likes_count"`
	RepostsCount    int       `db:"reposts_count" json:"reposts_count"`
	CommentsCount   int       `db:"comments_count" json:"comments_count"`
}

// PostFilter selects which posts a listing returns. At most one of the
// relation filters is expected to be set.
type PostFilter struct {
	AuthorID   *int64
	LikedBy    *int64
	RepostedBy *int64
	// FeedOf returns posts by authors the user follows.
	FeedOf *int64
	// ExploreFor returns posts by authors the user does not follow, excluding the user.
	ExploreFor *int64
}

type CreatePostRequest struct {
	Content string  `json:"content"`
	Image   *string `json:"image"`
}

type UpdatePostRequest struct {
	Content *string `json:"content"`
	Image   *string `json:"image"`
}

// ToggleResult reports the membership state after a like/repost toggle.
type ToggleResult struct {
	Active bool
	Count  int
}

var ErrPostNotFound = errors.New("post not found")
