package model

import (
	"errors"
	"time"
)

// Comment belongs to a post and optionally to a parent comment on the same post.
type Comment struct {
	ID             int64     `db:"id" json:"id"`
	PostID         int64     `db:"post_id" json:"post"`
	AuthorID       int64     `db:"author_id" json:"-"`
	AuthorUsername string    `db:"author_username" json:"username"`
	ParentID       *int64    `db:"parent_id" json:"parent"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	LikesCount     int       `db:"likes_count" json:"likes_count"`
}

type CreateCommentRequest struct {
	PostID   int64  `json:"post"`
	ParentID *int64 `json:"parent"`
	Content  string `json:"content"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content"`
}

type CommentFilter struct {
	PostID *int64
}

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentMismatch  = errors.New("parent comment must belong to the same post")
)
