package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialhub/internal/model"
)

// postSelect joins author details and computes the like/repost/comment counts.
const postSelect = `
	SELECT p.id, p.author_id, u.username AS author_username, pr.id AS author_profile_id,
	       p.content, p.image, p.created_at, p.updated_at,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
	       (SELECT COUNT(*) FROM post_reposts rp WHERE rp.post_id = p.id) AS reposts_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN profiles pr ON pr.user_id = p.author_id
`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (author_id, content, image, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query, p.AuthorID, p.Content, p.Image).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	created, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := r.db.GetContext(ctx, &p, postSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// postConditions translates a PostFilter into WHERE clauses over alias p.
func postConditions(f model.PostFilter) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(format string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.AuthorID != nil {
		add("p.author_id = $%d", *f.AuthorID)
	}
	if f.LikedBy != nil {
		add("EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $%d)", *f.LikedBy)
	}
	if f.RepostedBy != nil {
		add("EXISTS (SELECT 1 FROM post_reposts rp WHERE rp.post_id = p.id AND rp.user_id = $%d)", *f.RepostedBy)
	}
	if f.FeedOf != nil {
		add("p.author_id IN (SELECT following_id FROM follows WHERE follower_id = $%d)", *f.FeedOf)
	}
	if f.ExploreFor != nil {
		add("p.author_id <> $%[1]d AND p.author_id NOT IN (SELECT following_id FROM follows WHERE follower_id = $%[1]d)", *f.ExploreFor)
	}
	return conds, args
}

func (r *postRepository) List(ctx context.Context, filter model.PostFilter, page *model.Page) ([]model.Post, int, error) {
	conds, args := postConditions(filter)
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts p`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := postSelect + where + ` ORDER BY p.created_at DESC, p.id DESC`
	if page != nil {
		args = append(args, page.Limit(), page.Offset())
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts SET content = $1, image = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, p.Content, p.Image, p.ID).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return expectOneRow(result, model.ErrPostNotFound)
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	return toggleMembership(ctx, r.db, postLikesTable, postID, userID)
}

func (r *postRepository) ToggleRepost(ctx context.Context, postID, userID int64) (bool, error) {
	return toggleMembership(ctx, r.db, postRepostsTable, postID, userID)
}

func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	if err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to check likes: %w", err)
	}

	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}
