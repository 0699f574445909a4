package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/monitoring"
	"socialhub/internal/queue"
	"socialhub/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	emitter     *queue.Emitter
	log         *logrus.Entry
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	emitter *queue.Emitter,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		emitter:     emitter,
		log:         logger.For("CommentService"),
	}
}

// List returns one page of comments oldest-first, optionally limited to one post.
func (s *CommentService) List(ctx context.Context, filter model.CommentFilter, page model.Page) ([]model.Comment, int, error) {
	comments, count, err := s.commentRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return comments, count, nil
}

func (s *CommentService) Get(ctx context.Context, id int64) (*model.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// Create adds a comment by the requester. A parent, when given, must exist and
// belong to the same post.
func (s *CommentService) Create(ctx context.Context, actorID int64, req *model.CreateCommentRequest) (*model.Comment, error) {
	verr := &model.ValidationError{}
	if req.PostID == 0 {
		verr.Add("post", msgRequired)
	}
	if strings.TrimSpace(req.Content) == "" {
		verr.Add("content", msgRequired)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if _, err := s.postRepo.GetByID(ctx, req.PostID); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, model.NewValidationError("post", msgUnknownPK(req.PostID))
		}
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, model.ErrCommentNotFound) {
				return nil, model.NewValidationError("parent", msgUnknownPK(*req.ParentID))
			}
			return nil, err
		}
		if parent.PostID != req.PostID {
			return nil, model.NewValidationError("parent", model.ErrParentMismatch.Error())
		}
	}

	return s.create(ctx, &model.Comment{
		PostID:   req.PostID,
		AuthorID: actorID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
}

// Reply adds a comment on the parent's post with parent set to parentID.
func (s *CommentService) Reply(ctx context.Context, actorID, parentID int64, req *model.ReplyRequest) (*model.Comment, error) {
	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.NewValidationError("content", msgRequired)
	}

	return s.create(ctx, &model.Comment{
		PostID:   parent.PostID,
		AuthorID: actorID,
		ParentID: &parent.ID,
		Content:  req.Content,
	})
}

func (s *CommentService) create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"author_id":  comment.AuthorID,
	}).Debug("Comment created")
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// Update edits the content of the requester's own comment.
func (s *CommentService) Update(ctx context.Context, actorID, id int64, req *model.UpdateCommentRequest, partial bool) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, model.ErrForbidden
	}

	if req.Content == nil {
		if !partial {
			return nil, model.NewValidationError("content", msgRequired)
		}
		return comment, nil
	}
	if strings.TrimSpace(*req.Content) == "" {
		return nil, model.NewValidationError("content", "This field may not be blank.")
	}
	comment.Content = *req.Content

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, id)
}

// Delete removes the requester's own comment and its replies.
func (s *CommentService) Delete(ctx context.Context, actorID, id int64) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID {
		return model.ErrForbidden
	}
	return s.commentRepo.Delete(ctx, id)
}

func (s *CommentService) ToggleLike(ctx context.Context, actorID, commentID int64) (*model.ToggleResult, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.commentRepo.ToggleLike(ctx, commentID, actorID)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	monitoring.RecordToggle("comment_like", liked)
	if liked {
		s.emitter.Emit(ctx, queue.NewCommentLikedEvent(actorID, commentID))
	}
	return &model.ToggleResult{Active: liked, Count: comment.LikesCount}, nil
}
