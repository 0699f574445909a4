// Package testutil provides an in-memory implementation of the repository
// interfaces for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"socialhub/internal/model"
	"socialhub/internal/repository"
)

type pair [2]int64

// Store keeps every table in maps guarded by one mutex. Timestamps come from a
// fake clock that advances one second per write, so ordering is deterministic.
type Store struct {
	mu  sync.Mutex
	now time.Time
	seq int64

	users        map[int64]*model.User
	profiles     map[int64]*model.Profile
	follows      map[pair]time.Time
	posts        map[int64]*model.Post
	postLikes    map[pair]bool
	postReposts  map[pair]bool
	comments     map[int64]*model.Comment
	commentLikes map[pair]bool
	messages     map[int64]*model.Message
	tokens       map[string]*model.RefreshToken
}

func NewStore() *Store {
	return &Store{
		now:          time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:        map[int64]*model.User{},
		profiles:     map[int64]*model.Profile{},
		follows:      map[pair]time.Time{},
		posts:        map[int64]*model.Post{},
		postLikes:    map[pair]bool{},
		postReposts:  map[pair]bool{},
		comments:     map[int64]*model.Comment{},
		commentLikes: map[pair]bool{},
		messages:     map[int64]*model.Message{},
		tokens:       map[string]*model.RefreshToken{},
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{s} }
func (s *Store) Follows() repository.FollowRepository { return &followRepo{s} }
func (s *Store) Posts() repository.PostRepository { return &postRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s} }
func (s *Store) RefreshTokens() repository.RefreshTokenRepository { return &tokenRepo{s} }

// SetMessageTime overrides a message's created_at. Used to build timestamp ties.
func (s *Store) SetMessageTime(id int64, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.messages[id]; ok {
		m.CreatedAt = t
	}
}

// MessageIsRead reports the stored is_read flag.
func (s *Store) MessageIsRead(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	return ok && m.IsRead
}

// FollowExists reports whether follower follows following.
func (s *Store) FollowExists(follower, following int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.follows[pair{follower, following}]
	return ok
}

func (s *Store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func paginate[T any](items []T, page model.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func toggle(set map[pair]bool, key pair) bool {
	if set[key] {
		delete(set, key)
		return false
	}
	set[key] = true
	return true
}

// ---- users ----

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.ErrUsernameExists
		}
	}
	u.ID = s.nextID()
	u.IsActive = true
	u.DateJoined = s.tick()
	cp := *u
	s.users[u.ID] = &cp

	pid := s.nextID()
	s.profiles[pid] = &model.Profile{ID: pid, UserID: u.ID, CreatedAt: u.DateJoined, UpdatedAt: u.DateJoined}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepo) List(ctx context.Context, f model.UserFilter, page model.Page) ([]model.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var all []model.User
	for _, u := range r.s.users {
		if f.Username != nil && u.Username != *f.Username {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if search != "" {
			hay := strings.ToLower(strings.Join([]string{u.Username, u.FirstName, u.LastName, u.Email}, "\x00"))
			if !strings.Contains(hay, search) {
				continue
			}
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), len(all), nil
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	existing.Email, existing.FirstName, existing.LastName = u.Email, u.FirstName, u.LastName
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	for pid, p := range s.profiles {
		if p.UserID == id {
			delete(s.profiles, pid)
		}
	}
	for k := range s.follows {
		if k[0] == id || k[1] == id {
			delete(s.follows, k)
		}
	}
	for pid, p := range s.posts {
		if p.AuthorID == id {
			s.deletePostLocked(pid)
		}
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, cid)
		}
	}
	for mid, m := range s.messages {
		if m.Involves(id) {
			delete(s.messages, mid)
		}
	}
	return nil
}

// ---- profiles ----

type profileRepo struct{ s *Store }

func (s *Store) profileView(p *model.Profile) model.Profile {
	out := *p
	if u, ok := s.users[p.UserID]; ok {
		out.Username = u.Username
	}
	out.FollowersCount, out.FollowingCount = 0, 0
	for k := range s.follows {
		if k[1] == p.UserID {
			out.FollowersCount++
		}
		if k[0] == p.UserID {
			out.FollowingCount++
		}
	}
	return out
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.UserID == p.UserID {
			return model.ErrProfileExists
		}
	}
	p.ID = s.nextID()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	v := r.s.profileView(p)
	return &v, nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UserID == userID {
			v := r.s.profileView(p)
			return &v, nil
		}
	}
	return nil, model.ErrProfileNotFound
}

func (r *profileRepo) GetByUserIDs(ctx context.Context, userIDs []int64) ([]model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := []model.Profile{}
	for _, p := range r.s.profiles {
		if want[p.UserID] {
			out = append(out, r.s.profileView(p))
		}
	}
	return out, nil
}

func (r *profileRepo) List(ctx context.Context, page model.Page) ([]model.Profile, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Profile
	for _, p := range r.s.profiles {
		all = append(all, r.s.profileView(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), len(all), nil
}

func (r *profileRepo) Update(ctx context.Context, p *model.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.profiles[p.ID]
	if !ok {
		return model.ErrProfileNotFound
	}
	existing.Bio = p.Bio
	existing.ProfilePicture = p.ProfilePicture
	existing.UpdatedAt = s.tick()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[id]; !ok {
		return model.ErrProfileNotFound
	}
	delete(r.s.profiles, id)
	return nil
}

func (r *profileRepo) listRelated(userID int64, followers bool) []model.Profile {
	s := r.s
	type entry struct {
		userID int64
		at     time.Time
	}
	var related []entry
	for k, at := range s.follows {
		if followers && k[1] == userID {
			related = append(related, entry{k[0], at})
		}
		if !followers && k[0] == userID {
			related = append(related, entry{k[1], at})
		}
	}
	sort.Slice(related, func(i, j int) bool { return related[i].at.After(related[j].at) })

	out := []model.Profile{}
	for _, e := range related {
		for _, p := range s.profiles {
			if p.UserID == e.userID {
				out = append(out, s.profileView(p))
			}
		}
	}
	return out
}

func (r *profileRepo) ListFollowers(ctx context.Context, userID int64) ([]model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listRelated(userID, true), nil
}

func (r *profileRepo) ListFollowing(ctx context.Context, userID int64) ([]model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listRelated(userID, false), nil
}

// ---- follows ----

type followRepo struct{ s *Store }

func (r *followRepo) Toggle(ctx context.Context, followerID, followingID int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pair{followerID, followingID}
	if _, ok := s.follows[key]; ok {
		delete(s.follows, key)
		return false, nil
	}
	s.follows[key] = s.tick()
	return true, nil
}

// ---- posts ----

type postRepo struct{ s *Store }

func (s *Store) postView(p *model.Post) model.Post {
	out := *p
	if u, ok := s.users[p.AuthorID]; ok {
		out.AuthorUsername = u.Username
	}
	out.AuthorProfileID = nil
	for _, pr := range s.profiles {
		if pr.UserID == p.AuthorID {
			id := pr.ID
			out.AuthorProfileID = &id
		}
	}
	out.LikesCount, out.RepostsCount, out.CommentsCount = 0, 0, 0
	for k := range s.postLikes {
		if k[0] == p.ID {
			out.LikesCount++
		}
	}
	for k := range s.postReposts {
		if k[0] == p.ID {
			out.RepostsCount++
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			out.CommentsCount++
		}
	}
	return out
}

func (s *Store) postMatches(p *model.Post, f model.PostFilter) bool {
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.LikedBy != nil && !s.postLikes[pair{p.ID, *f.LikedBy}] {
		return false
	}
	if f.RepostedBy != nil && !s.postReposts[pair{p.ID, *f.RepostedBy}] {
		return false
	}
	if f.FeedOf != nil {
		if _, ok := s.follows[pair{*f.FeedOf, p.AuthorID}]; !ok {
			return false
		}
	}
	if f.ExploreFor != nil {
		if p.AuthorID == *f.ExploreFor {
			return false
		}
		if _, ok := s.follows[pair{*f.ExploreFor, p.AuthorID}]; ok {
			return false
		}
	}
	return true
}

func (r *postRepo) Create(ctx context.Context, p *model.Post) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.posts[p.ID] = &cp
	*p = s.postView(&cp)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	v := r.s.postView(p)
	return &v, nil
}

func (r *postRepo) List(ctx context.Context, f model.PostFilter, page *model.Page) ([]model.Post, int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []model.Post{}
	for _, p := range s.posts {
		if s.postMatches(p, f) {
			all = append(all, s.postView(p))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if page == nil {
		return all, len(all), nil
	}
	return paginate(all, *page), len(all), nil
}

func (r *postRepo) Update(ctx context.Context, p *model.Post) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[p.ID]
	if !ok {
		return model.ErrPostNotFound
	}
	existing.Content, existing.Image = p.Content, p.Image
	existing.UpdatedAt = s.tick()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *Store) deletePostLocked(id int64) {
	delete(s.posts, id)
	for k := range s.postLikes {
		if k[0] == id {
			delete(s.postLikes, k)
		}
	}
	for k := range s.postReposts {
		if k[0] == id {
			delete(s.postReposts, k)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	r.s.deletePostLocked(id)
	return nil
}

func (r *postRepo) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return toggle(r.s.postLikes, pair{postID, userID}), nil
}

func (r *postRepo) ToggleRepost(ctx context.Context, postID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return toggle(r.s.postReposts, pair{postID, userID}), nil
}

func (r *postRepo) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		out[id] = r.s.postLikes[pair{id, userID}]
	}
	return out, nil
}

// ---- comments ----

type commentRepo struct{ s *Store }

func (s *Store) commentView(c *model.Comment) model.Comment {
	out := *c
	if u, ok := s.users[c.AuthorID]; ok {
		out.AuthorUsername = u.Username
	}
	out.LikesCount = 0
	for k := range s.commentLikes {
		if k[0] == c.ID {
			out.LikesCount++
		}
	}
	return out
}

func sortCommentsAsc(cs []model.Comment) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.comments[c.ID] = &cp
	*c = s.commentView(&cp)
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	v := r.s.commentView(c)
	return &v, nil
}

func (r *commentRepo) List(ctx context.Context, f model.CommentFilter, page model.Page) ([]model.Comment, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Comment
	for _, c := range r.s.comments {
		if f.PostID != nil && c.PostID != *f.PostID {
			continue
		}
		all = append(all, r.s.commentView(c))
	}
	sortCommentsAsc(all)
	return paginate(all, page), len(all), nil
}

func (r *commentRepo) ListByPostIDs(ctx context.Context, postIDs []int64) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range postIDs {
		want[id] = true
	}
	all := []model.Comment{}
	for _, c := range r.s.comments {
		if want[c.PostID] {
			all = append(all, r.s.commentView(c))
		}
	}
	sortCommentsAsc(all)
	return all, nil
}

func (r *commentRepo) Update(ctx context.Context, c *model.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[c.ID]
	if !ok {
		return model.ErrCommentNotFound
	}
	existing.Content = c.Content
	existing.UpdatedAt = s.tick()
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	// Replies cascade like the parent_id foreign key.
	doomed := []int64{id}
	for len(doomed) > 0 {
		cur := doomed[0]
		doomed = doomed[1:]
		delete(s.comments, cur)
		for cid, c := range s.comments {
			if c.ParentID != nil && *c.ParentID == cur {
				doomed = append(doomed, cid)
			}
		}
	}
	return nil
}

func (r *commentRepo) ToggleLike(ctx context.Context, commentID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return toggle(r.s.commentLikes, pair{commentID, userID}), nil
}

// ---- messages ----

type messageRepo struct{ s *Store }

func (s *Store) messageView(m *model.Message) model.Message {
	out := *m
	if u, ok := s.users[m.SenderID]; ok {
		out.SenderUsername = u.Username
	}
	if u, ok := s.users[m.ReceiverID]; ok {
		out.ReceiverUsername = u.Username
	}
	return out
}

func (s *Store) messagesWhere(keep func(*model.Message) bool, newestFirst bool) []model.Message {
	out := []model.Message{}
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, s.messageView(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt) != newestFirst
		}
		return (out[i].ID < out[j].ID) != newestFirst
	})
	return out
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID()
	m.CreatedAt = s.tick()
	m.IsRead = false
	cp := *m
	s.messages[m.ID] = &cp
	*m = s.messageView(&cp)
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	v := r.s.messageView(m)
	return &v, nil
}

func (r *messageRepo) ListForUser(ctx context.Context, userID int64, page model.Page) ([]model.Message, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.s.messagesWhere(func(m *model.Message) bool { return m.Involves(userID) }, true)
	return paginate(all, page), len(all), nil
}

func (r *messageRepo) ListAllForUser(ctx context.Context, userID int64) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.messagesWhere(func(m *model.Message) bool { return m.Involves(userID) }, false), nil
}

func (r *messageRepo) ListBetween(ctx context.Context, userID, otherID int64, page model.Page) ([]model.Message, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.s.messagesWhere(func(m *model.Message) bool {
		return (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID)
	}, true)
	return paginate(all, page), len(all), nil
}

func (r *messageRepo) CountUnread(ctx context.Context, receiverID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *messageRepo) Update(ctx context.Context, m *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.messages[m.ID]
	if !ok {
		return model.ErrMessageNotFound
	}
	existing.Content = m.Content
	return nil
}

func (r *messageRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return model.ErrMessageNotFound
	}
	delete(r.s.messages, id)
	return nil
}

func (r *messageRepo) MarkAsRead(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return model.ErrMessageNotFound
	}
	m.IsRead = true
	return nil
}

// ---- refresh tokens ----

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = fmt.Sprintf("tok-%d", s.nextID())
	}
	t.CreatedAt = time.Now()
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (r *tokenRepo) FindByTokenHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (r *tokenRepo) Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tokens[oldID]
	if !ok || old.RevokedAt != nil {
		return model.ErrRefreshTokenReused
	}
	if next.ID == "" {
		next.ID = fmt.Sprintf("tok-%d", s.nextID())
	}
	now := time.Now()
	old.RevokedAt = &now
	old.ReplacedBy = &next.ID
	next.UserID = old.UserID
	next.CreatedAt = now
	cp := *next
	s.tokens[next.ID] = &cp
	return nil
}

func (r *tokenRepo) Revoke(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[id]
	if !ok || t.RevokedAt != nil {
		return model.ErrRefreshTokenNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *tokenRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	cutoff := time.Now().Add(-olderThan)
	for id, t := range r.s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// SetUserActive flips a user's is_active flag, which no API operation edits.
func (s *Store) SetUserActive(userID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.IsActive = active
	}
}

// RevokedTokenCount reports how many stored tokens of userID are revoked.
func (s *Store) RevokedTokenCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt != nil {
			n++
		}
	}
	return n
}
