package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

// MessageHandler serves /messages. Every route runs behind AuthMiddleware.
type MessageHandler struct {
	messageService *service.MessageService
	serializer     *serializer.Serializer
	log            *logrus.Entry
}

func NewMessageHandler(messageService *service.MessageService, s *serializer.Serializer) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		serializer:     s,
		log:            logger.For("MessageHandler"),
	}
}

// List GET /messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	messages, count, err := h.messageService.List(r.Context(), actorID, page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, serializer.Messages(messages))
}

// Get GET /messages/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Message(msg))
}

// Create POST /messages
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messageService.Send(r.Context(), actorID, &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, serializer.Message(msg))
}

// Update handles both PUT and PATCH /messages/{id}.
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messageService.Update(r.Context(), actorID, id, &req, isPartial(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Message(msg))
}

// Delete DELETE /messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Conversations returns the latest message per counterpart.
// GET /messages/conversations
func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	convs, err := h.messageService.Conversations(r.Context(), actorID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	reps, err := h.serializer.Conversations(r.Context(), convs)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reps)
}

// With returns the thread between the requester and {user_id}.
// GET /messages/with/{user_id}
func (h *MessageHandler) With(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	otherID, ok := urlID(w, r, "user_id")
	if !ok {
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	messages, count, err := h.messageService.With(r.Context(), actorID, otherID, page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, serializer.Messages(messages))
}

// UnreadCount GET /messages/unread_count
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.messageService.UnreadCount(r.Context(), actorID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

// MarkAsRead POST /messages/{id}/mark_as_read
func (h *MessageHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkAsRead(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": model.StatusMarkedRead})
}
