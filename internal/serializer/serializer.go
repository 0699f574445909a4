// Package serializer turns stored entities into API representations and
// computes the derived fields (nested profile, is_liked, comment trees).
package serializer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"socialhub/internal/model"
	"socialhub/internal/repository"
)

type ProfileRepresentation struct {
	ID             *int64     `json:"id"`
	Username       string     `json:"username"`
	Bio            string     `json:"bio"`
	ProfilePicture *string    `json:"profile_picture"`
	FollowersCount int        `json:"followers_count"`
	FollowingCount int        `json:"following_count"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type UserRepresentation struct {
	ID        int64                 `json:"id"`
	Username  string                `json:"username"`
	Email     string                `json:"email"`
	FirstName string                `json:"first_name"`
	LastName  string                `json:"last_name"`
	Profile   ProfileRepresentation `json:"profile"`
}

type CommentRepresentation struct {
	ID         int64                   `json:"id"`
	Post       int64                   `json:"post"`
	Parent     *int64                  `json:"parent"`
	Username   string                  `json:"username"`
	Content    string                  `json:"content"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
	LikesCount int                     `json:"likes_count"`
	Replies    []CommentRepresentation `json:"replies"`
}

type PostRepresentation struct {
	ID              int64                   `json:"id"`
	Username        string                  `json:"username"`
	AuthorUserID    int64                   `json:"author_user_id"`
	AuthorProfileID *int64                  `json:"author_profile_id"`
	Content         string                  `json:"content"`
	Image           *string                 `json:"image"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	LikesCount      int                     `json:"likes_count"`
	RepostsCount    int                     `json:"reposts_count"`
	CommentsCount   int                     `json:"comments_count"`
	IsLiked         *bool                   `json:"is_liked,omitempty"`
	Comments        []CommentRepresentation `json:"comments"`
}

type MessageRepresentation struct {
	ID               int64     `json:"id"`
	Sender           int64     `json:"sender"`
	SenderUsername   string    `json:"sender_username"`
	Receiver         int64     `json:"receiver"`
	ReceiverUsername string    `json:"receiver_username"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	IsRead           bool      `json:"is_read"`
}

type ConversationRepresentation struct {
	User        UserRepresentation    `json:"user"`
	LastMessage MessageRepresentation `json:"last_message"`
}

// Serializer reads the related rows a representation needs. Related lists are
// fetched in batches, one query per relation per call.
type Serializer struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	log      *logrus.Entry
}

func New(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	log *logrus.Entry,
) *Serializer {
	return &Serializer{
		users:    users,
		profiles: profiles,
		posts:    posts,
		comments: comments,
		log:      log,
	}
}

// Profile renders a stored profile. Bio is never null.
func Profile(p *model.Profile) ProfileRepresentation {
	id := p.ID
	created, updated := p.CreatedAt, p.UpdatedAt
	return ProfileRepresentation{
		ID:             &id,
		Username:       p.Username,
		Bio:            p.Bio,
		ProfilePicture: p.ProfilePicture,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		CreatedAt:      &created,
		UpdatedAt:      &updated,
	}
}

func Profiles(ps []model.Profile) []ProfileRepresentation {
	out := make([]ProfileRepresentation, len(ps))
	for i := range ps {
		out[i] = Profile(&ps[i])
	}
	return out
}

// emptyProfile stands in for a profile that is missing or failed to load.
func emptyProfile(username string) ProfileRepresentation {
	return ProfileRepresentation{Username: username, Bio: ""}
}

func userWithProfile(u *model.User, profile ProfileRepresentation) UserRepresentation {
	return UserRepresentation{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Profile:   profile,
	}
}

// User renders a user with its nested profile. Profile lookup failures are
// logged and rendered as an empty profile rather than failing the response.
func (s *Serializer) User(ctx context.Context, u *model.User) UserRepresentation {
	p, err := s.profiles.GetByUserID(ctx, u.ID)
	if err != nil {
		if !errors.Is(err, model.ErrProfileNotFound) {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("Profile lookup failed")
		}
		return userWithProfile(u, emptyProfile(u.Username))
	}
	return userWithProfile(u, Profile(p))
}

// Users renders a list with one batched profile lookup.
func (s *Serializer) Users(ctx context.Context, us []model.User) []UserRepresentation {
	ids := make([]int64, len(us))
	for i := range us {
		ids[i] = us[i].ID
	}

	byUser := map[int64]*model.Profile{}
	profiles, err := s.profiles.GetByUserIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("Batch profile lookup failed")
	}
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}

	out := make([]UserRepresentation, len(us))
	for i := range us {
		if p, ok := byUser[us[i].ID]; ok {
			out[i] = userWithProfile(&us[i], Profile(p))
		} else {
			out[i] = userWithProfile(&us[i], emptyProfile(us[i].Username))
		}
	}
	return out
}

// Post renders a single post. See Posts.
func (s *Serializer) Post(ctx context.Context, p *model.Post, viewerID *int64) (PostRepresentation, error) {
	out, err := s.Posts(ctx, []model.Post{*p}, viewerID)
	if err != nil {
		return PostRepresentation{}, err
	}
	return out[0], nil
}

// Posts renders posts with their root comments (replies nested) and, for an
// authenticated viewer, is_liked.
func (s *Serializer) Posts(ctx context.Context, posts []model.Post, viewerID *int64) ([]PostRepresentation, error) {
	out := make([]PostRepresentation, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	all, err := s.comments.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	tree := BuildCommentTree(all)

	var liked map[int64]bool
	if viewerID != nil {
		liked, err = s.posts.CheckLikes(ctx, *viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("check likes: %w", err)
		}
	}

	for i := range posts {
		p := &posts[i]
		rep := PostRepresentation{
			ID:              p.ID,
			Username:        p.AuthorUsername,
			AuthorUserID:    p.AuthorID,
			AuthorProfileID: p.AuthorProfileID,
			Content:         p.Content,
			Image:           p.Image,
			CreatedAt:       p.CreatedAt,
			UpdatedAt:       p.UpdatedAt,
			LikesCount:      p.LikesCount,
			RepostsCount:    p.RepostsCount,
			CommentsCount:   p.CommentsCount,
			Comments:        tree.Roots(p.ID),
		}
		if viewerID != nil {
			isLiked := liked[p.ID]
			rep.IsLiked = &isLiked
		}
		out[i] = rep
	}
	return out, nil
}

// Comment renders a single comment with its reply subtree.
func (s *Serializer) Comment(ctx context.Context, c *model.Comment) (CommentRepresentation, error) {
	out, err := s.Comments(ctx, []model.Comment{*c})
	if err != nil {
		return CommentRepresentation{}, err
	}
	return out[0], nil
}

// Comments renders comments with their reply subtrees, loading every comment of
// the involved posts in one query.
func (s *Serializer) Comments(ctx context.Context, cs []model.Comment) ([]CommentRepresentation, error) {
	out := make([]CommentRepresentation, len(cs))
	if len(cs) == 0 {
		return out, nil
	}

	seen := map[int64]bool{}
	var postIDs []int64
	for i := range cs {
		if !seen[cs[i].PostID] {
			seen[cs[i].PostID] = true
			postIDs = append(postIDs, cs[i].PostID)
		}
	}

	all, err := s.comments.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	tree := BuildCommentTree(all)

	for i := range cs {
		out[i] = tree.Render(&cs[i])
	}
	return out, nil
}

func Message(m *model.Message) MessageRepresentation {
	return MessageRepresentation{
		ID:               m.ID,
		Sender:           m.SenderID,
		SenderUsername:   m.SenderUsername,
		Receiver:         m.ReceiverID,
		ReceiverUsername: m.ReceiverUsername,
		Content:          m.Content,
		CreatedAt:        m.CreatedAt,
		IsRead:           m.IsRead,
	}
}

func Messages(ms []model.Message) []MessageRepresentation {
	out := make([]MessageRepresentation, len(ms))
	for i := range ms {
		out[i] = Message(&ms[i])
	}
	return out
}

// Conversations renders each conversation with the counterpart's user
// representation. Order is preserved.
func (s *Serializer) Conversations(ctx context.Context, convs []model.Conversation) ([]ConversationRepresentation, error) {
	out := make([]ConversationRepresentation, 0, len(convs))
	if len(convs) == 0 {
		return out, nil
	}

	ids := make([]int64, len(convs))
	for i := range convs {
		ids[i] = convs[i].CounterpartID
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load counterparts: %w", err)
	}
	reps := s.Users(ctx, users)
	byID := make(map[int64]UserRepresentation, len(reps))
	for _, r := range reps {
		byID[r.ID] = r
	}

	for i := range convs {
		user, ok := byID[convs[i].CounterpartID]
		if !ok {
			continue
		}
		out = append(out, ConversationRepresentation{
			User:        user,
			LastMessage: Message(&convs[i].LastMessage),
		})
	}
	return out, nil
}
