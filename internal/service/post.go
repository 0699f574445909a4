package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/monitoring"
	"socialhub/internal/queue"
	"socialhub/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	emitter  *queue.Emitter
	log      *logrus.Entry
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	emitter *queue.Emitter,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		emitter:  emitter,
		log:      logger.For("PostService"),
	}
}

// List returns one page of every post, newest-first.
func (s *PostService) List(ctx context.Context, page model.Page) ([]model.Post, int, error) {
	return s.listPage(ctx, model.PostFilter{}, page)
}

// Feed returns posts by authors the user follows, newest-first.
func (s *PostService) Feed(ctx context.Context, userID int64, page model.Page) ([]model.Post, int, error) {
	return s.listPage(ctx, model.PostFilter{FeedOf: &userID}, page)
}

// Explore returns posts by everyone the user neither follows nor is.
func (s *PostService) Explore(ctx context.Context, userID int64, page model.Page) ([]model.Post, int, error) {
	return s.listPage(ctx, model.PostFilter{ExploreFor: &userID}, page)
}

func (s *PostService) listPage(ctx context.Context, filter model.PostFilter, page model.Page) ([]model.Post, int, error) {
	posts, count, err := s.postRepo.List(ctx, filter, &page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return posts, count, nil
}

// ByAuthor returns every post written by userID, newest-first.
func (s *PostService) ByAuthor(ctx context.Context, userID int64) ([]model.Post, error) {
	return s.listForUser(ctx, userID, model.PostFilter{AuthorID: &userID})
}

// LikedBy returns every post userID has liked, newest-first.
func (s *PostService) LikedBy(ctx context.Context, userID int64) ([]model.Post, error) {
	return s.listForUser(ctx, userID, model.PostFilter{LikedBy: &userID})
}

// RepostedBy returns every post userID has reposted, newest-first.
func (s *PostService) RepostedBy(ctx context.Context, userID int64) ([]model.Post, error) {
	return s.listForUser(ctx, userID, model.PostFilter{RepostedBy: &userID})
}

func (s *PostService) listForUser(ctx context.Context, userID int64, filter model.PostFilter) ([]model.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, _, err := s.postRepo.List(ctx, filter, nil)
	return posts, err
}

func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// Create stores a post authored by the requester.
func (s *PostService) Create(ctx context.Context, actorID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.NewValidationError("content", msgRequired)
	}

	post := &model.Post{
		AuthorID: actorID,
		Content:  req.Content,
		Image:    nonEmpty(req.Image),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": actorID}).Info("Post created")
	return s.postRepo.GetByID(ctx, post.ID)
}

// Update edits content and image. A full update (partial=false) requires
// content and clears an omitted image.
func (s *PostService) Update(ctx context.Context, actorID, id int64, req *model.UpdatePostRequest, partial bool) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, model.ErrForbidden
	}

	if !partial {
		if req.Content == nil {
			return nil, model.NewValidationError("content", msgRequired)
		}
		post.Image = nil
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, model.NewValidationError("content", "This field may not be blank.")
		}
		post.Content = *req.Content
	}
	if req.Image != nil {
		post.Image = nonEmpty(req.Image)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, actorID, id int64) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return model.ErrForbidden
	}
	return s.postRepo.Delete(ctx, id)
}

// ToggleLike likes the post for the requester, or removes an existing like.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID int64) (*model.ToggleResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	monitoring.RecordToggle("post_like", liked)
	if liked {
		s.emitter.Emit(ctx, queue.NewPostLikedEvent(actorID, postID))
	}
	return &model.ToggleResult{Active: liked, Count: post.LikesCount}, nil
}

// ToggleRepost reposts the post for the requester, or removes an existing repost.
func (s *PostService) ToggleRepost(ctx context.Context, actorID, postID int64) (*model.ToggleResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	reposted, err := s.postRepo.ToggleRepost(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	monitoring.RecordToggle("post_repost", reposted)
	if reposted {
		s.emitter.Emit(ctx, queue.NewPostRepostedEvent(actorID, postID))
	}
	return &model.ToggleResult{Active: reposted, Count: post.RepostsCount}, nil
}

// nonEmpty maps an empty reference to nil so "" clears an image.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
