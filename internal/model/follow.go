package model

import (
	"errors"
	"time"
)

type Follow struct {
	ID          int64     `db:"id" json:"id"`
	FollowerID  int64     `db:"follower_id" json:"follower_id"`
	FollowingID int64     `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Toggle outcomes reported in {"status": ...} responses.
const (
	StatusFollowed   = "followed"
	StatusUnfollowed = "unfollowed"
	StatusLiked      = "liked"
	StatusUnliked    = "unliked"
	StatusReposted   = "reposted"
	StatusUnreposted = "unreposted"
	StatusMarkedRead = "marked as read"
)

var ErrCannotFollowSelf = errors.New("You cannot follow yourself")
