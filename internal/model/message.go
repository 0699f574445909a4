package model

import (
	"errors"
	"time"
)

// Message is a direct message. IsRead only ever moves from false to true.
type Message struct {
	ID               int64     `db:"id" json:"id"`
	SenderID         int64     `db:"sender_id" json:"sender"`
	SenderUsername   string    `db:"sender_username" json:"sender_username"`
	ReceiverID       int64     `db:"receiver_id" json:"receiver"`
	ReceiverUsername string    `db:"receiver_username" json:"receiver_username"`
	Content          string    `db:"content" json:"content"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	IsRead           bool      `db:"is_read" json:"is_read"`
}

// Counterpart returns the other participant from userID's point of view.
func (m *Message) Counterpart(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether userID sent or received the message.
func (m *Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

type CreateMessageRequest struct {
	ReceiverID int64  `json:"receiver"`
	Content    string `json:"content"`
}

type UpdateMessageRequest struct {
	Content *string `json:"content"`
}

// Conversation is the latest message exchanged with one counterpart.
type Conversation struct {
	CounterpartID int64
	LastMessage   Message
}

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageSender   = errors.New("You can only modify messages you sent")
	ErrNotMessageReceiver = errors.New("You can only mark messages sent to you as read")
)
