package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialhub/internal/model"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, u.username AS author_username, c.parent_id,
	       c.content, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS likes_count
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

const commentOrder = ` ORDER BY c.created_at ASC, c.id ASC`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, parent_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query, c.PostID, c.AuthorID, c.ParentID, c.Content).Scan(&c.ID); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	created, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.GetContext(ctx, &c, commentSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) List(ctx context.Context, filter model.CommentFilter, page model.Page) ([]model.Comment, int, error) {
	where := ""
	var args []interface{}
	if filter.PostID != nil {
		where = ` WHERE c.post_id = $1`
		args = append(args, *filter.PostID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments c`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := commentSelect + where + commentOrder + fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	if len(postIDs) == 0 {
		return comments, nil
	}

	query := commentSelect + ` WHERE c.post_id = ANY($1)` + commentOrder
	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to list comments by posts: %w", err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, c *model.Comment) error {
	query := `
		UPDATE comments SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.Content, c.ID).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrCommentNotFound
		}
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOneRow(result, model.ErrCommentNotFound)
}

func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (bool, error) {
	return toggleMembership(ctx, r.db, commentLikesTable, commentID, userID)
}
