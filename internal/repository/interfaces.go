package repository

import (
	"context"
	"time"

	"socialhub/internal/model"
)

type UserRepository interface {
	// Create inserts the user and its empty profile in one transaction.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id int64) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []int64) ([]model.Profile, error)
	List(ctx context.Context, page model.Page) ([]model.Profile, int, error)
	Update(ctx context.Context, profile *model.Profile) error
	Delete(ctx context.Context, id int64) error
	// ListFollowers returns profiles of users following userID.
	ListFollowers(ctx context.Context, userID int64) ([]model.Profile, error)
	// ListFollowing returns profiles of users that userID follows.
	ListFollowing(ctx context.Context, userID int64) ([]model.Profile, error)
}

type FollowRepository interface {
	// Toggle removes the follow if present, otherwise creates it, in a single
	// statement. Returns true when the follow exists afterwards.
	Toggle(ctx context.Context, followerID, followingID int64) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// List returns matching posts newest-first plus the total count. A nil page
	// returns every match.
	List(ctx context.Context, filter model.PostFilter, page *model.Page) ([]model.Post, int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID, userID int64) (bool, error)
	ToggleRepost(ctx context.Context, postID, userID int64) (bool, error)
	// CheckLikes reports which of postIDs userID has liked.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// List returns comments oldest-first plus the total count.
	List(ctx context.Context, filter model.CommentFilter, page model.Page) ([]model.Comment, int, error)
	// ListByPostIDs returns every comment (roots and replies) on the given posts, oldest-first.
	ListByPostIDs(ctx context.Context, postIDs []int64) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, commentID, userID int64) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	// ListForUser returns messages userID sent or received, newest-first.
	ListForUser(ctx context.Context, userID int64, page model.Page) ([]model.Message, int, error)
	// ListAllForUser returns every message userID sent or received, ordered by
	// (created_at, id) ascending.
	ListAllForUser(ctx context.Context, userID int64) ([]model.Message, error)
	// ListBetween returns the thread between two users, newest-first.
	ListBetween(ctx context.Context, userID, otherID int64, page model.Page) ([]model.Message, int, error)
	CountUnread(ctx context.Context, receiverID int64) (int, error)
	Update(ctx context.Context, msg *model.Message) error
	Delete(ctx context.Context, id int64) error
	MarkAsRead(ctx context.Context, id int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// Rotate revokes oldID and stores next as its replacement atomically. It
	// reports ErrRefreshTokenReused when oldID was already revoked.
	Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
