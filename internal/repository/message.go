package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialhub/internal/model"
)

const messageSelect = `
	SELECT m.id, m.sender_id, s.username AS sender_username, m.receiver_id,
	       rc.username AS receiver_username, m.content, m.created_at, m.is_read
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users rc ON rc.id = m.receiver_id
`

const messageNewestFirst = ` ORDER BY m.created_at DESC, m.id DESC`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, created_at, is_read)
		VALUES ($1, $2, $3, NOW(), FALSE)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).Scan(&msg.ID); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	created, err := r.GetByID(ctx, msg.ID)
	if err != nil {
		return err
	}
	*msg = *created
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	var m model.Message
	if err := r.db.GetContext(ctx, &m, messageSelect+` WHERE m.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &m, nil
}

func (r *messageRepository) ListForUser(ctx context.Context, userID int64, page model.Page) ([]model.Message, int, error) {
	where := ` WHERE (m.sender_id = $1 OR m.receiver_id = $1)`
	return r.listPage(ctx, where, page, userID)
}

func (r *messageRepository) ListAllForUser(ctx context.Context, userID int64) ([]model.Message, error) {
	query := messageSelect + ` WHERE (m.sender_id = $1 OR m.receiver_id = $1) ORDER BY m.created_at ASC, m.id ASC`
	messages := []model.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list messages for user: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ListBetween(ctx context.Context, userID, otherID int64, page model.Page) ([]model.Message, int, error) {
	where := ` WHERE ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))`
	return r.listPage(ctx, where, page, userID, otherID)
}

func (r *messageRepository) listPage(ctx context.Context, where string, page model.Page, args ...interface{}) ([]model.Message, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages m`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := messageSelect + where + messageNewestFirst + fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	messages := []model.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &n, query, receiverID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *model.Message) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET content = $1 WHERE id = $2`, msg.Content, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return expectOneRow(result, model.ErrMessageNotFound)
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return expectOneRow(result, model.ErrMessageNotFound)
}

// MarkAsRead is idempotent: marking a read message again still succeeds.
func (r *messageRepository) MarkAsRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message as read: %w", err)
	}
	return expectOneRow(result, model.ErrMessageNotFound)
}
