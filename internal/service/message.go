package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/monitoring"
	"socialhub/internal/queue"
	"socialhub/internal/repository"
)

// MessageService handles direct messages. Every operation is scoped to the
// requester: only participants can see a message.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	emitter     *queue.Emitter
	log         *logrus.Entry
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	emitter *queue.Emitter,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		emitter:     emitter,
		log:         logger.For("MessageService"),
	}
}

// List returns messages the requester sent or received, newest-first.
func (s *MessageService) List(ctx context.Context, actorID int64, page model.Page) ([]model.Message, int, error) {
	messages, count, err := s.messageRepo.ListForUser(ctx, actorID, page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return messages, count, nil
}

// Get returns a message the requester participates in. Other messages are
// reported as not found.
func (s *MessageService) Get(ctx context.Context, actorID, id int64) (*model.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !msg.Involves(actorID) {
		return nil, model.ErrMessageNotFound
	}
	return msg, nil
}

// Send stores a message from the requester to req.ReceiverID.
func (s *MessageService) Send(ctx context.Context, actorID int64, req *model.CreateMessageRequest) (*model.Message, error) {
	verr := &model.ValidationError{}
	if req.ReceiverID == 0 {
		verr.Add("receiver", msgRequired)
	}
	if strings.TrimSpace(req.Content) == "" {
		verr.Add("content", msgRequired)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if _, err := s.userRepo.GetByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewValidationError("receiver", msgUnknownPK(req.ReceiverID))
		}
		return nil, err
	}

	msg := &model.Message{
		SenderID:   actorID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	monitoring.MessagesSent.Inc()
	s.emitter.Emit(ctx, queue.NewMessageSentEvent(actorID, req.ReceiverID, msg.ID))
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// Update edits the content of a message the requester sent.
func (s *MessageService) Update(ctx context.Context, actorID, id int64, req *model.UpdateMessageRequest, partial bool) (*model.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, model.ErrNotMessageSender
	}

	if req.Content == nil {
		if !partial {
			return nil, model.NewValidationError("content", msgRequired)
		}
		return msg, nil
	}
	if strings.TrimSpace(*req.Content) == "" {
		return nil, model.NewValidationError("content", "This field may not be blank.")
	}
	msg.Content = *req.Content

	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete removes a message the requester sent.
func (s *MessageService) Delete(ctx context.Context, actorID, id int64) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != actorID {
		return model.ErrNotMessageSender
	}
	return s.messageRepo.Delete(ctx, id)
}

// Conversations returns the latest message per counterpart, ordered by that
// message newest-first. Messages sharing a timestamp resolve to the larger id.
func (s *MessageService) Conversations(ctx context.Context, actorID int64) ([]model.Conversation, error) {
	messages, err := s.messageRepo.ListAllForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	latest := make(map[int64]model.Message)
	for _, m := range messages {
		other := m.Counterpart(actorID)
		cur, ok := latest[other]
		if !ok || newer(&m, &cur) {
			latest[other] = m
		}
	}

	out := make([]model.Conversation, 0, len(latest))
	for other, m := range latest {
		out = append(out, model.Conversation{CounterpartID: other, LastMessage: m})
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(&out[i].LastMessage, &out[j].LastMessage)
	})
	return out, nil
}

// newer orders messages by (created_at, id) descending.
func newer(a, b *model.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// With returns the thread between the requester and otherID, newest-first.
func (s *MessageService) With(ctx context.Context, actorID, otherID int64, page model.Page) ([]model.Message, int, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, 0, err
	}
	messages, count, err := s.messageRepo.ListBetween(ctx, actorID, otherID, page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return messages, count, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, actorID int64) (int, error) {
	return s.messageRepo.CountUnread(ctx, actorID)
}

// MarkAsRead flips is_read for a message addressed to the requester. Marking
// an already read message is a no-op.
func (s *MessageService) MarkAsRead(ctx context.Context, actorID, id int64) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.ReceiverID != actorID {
		return model.ErrNotMessageReceiver
	}
	if msg.IsRead {
		return nil
	}

	if err := s.messageRepo.MarkAsRead(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, queue.NewMessageReadEvent(actorID, msg.SenderID, id))
	return nil
}
