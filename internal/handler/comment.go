package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	serializer     *serializer.Serializer
	log            *logrus.Entry
}

func NewCommentHandler(commentService *service.CommentService, s *serializer.Serializer) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		serializer:     s,
		log:            logger.For("CommentHandler"),
	}
}

// List returns comments oldest-first, optionally filtered by ?post.
// GET /comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	var filter model.CommentFilter
	if raw := r.URL.Query().Get("post"); raw != "" {
		postID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeServiceError(w, h.log, model.NewValidationError("post", "Select a valid choice. That choice is not one of the available choices."))
			return
		}
		filter.PostID = &postID
	}

	comments, count, err := h.commentService.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	reps, err := h.serializer.Comments(r.Context(), comments)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, reps)
}

// Get GET /comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writeComment(w, r, http.StatusOK, comment)
}

// Create POST /comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), actorID, &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writeComment(w, r, http.StatusCreated, comment)
}

// Reply creates a comment whose parent is {id}.
// POST /comments/{id}/reply
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.ReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Reply(r.Context(), actorID, id, &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writeComment(w, r, http.StatusCreated, comment)
}

// Update handles both PUT and PATCH /comments/{id}.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Update(r.Context(), actorID, id, &req, isPartial(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writeComment(w, r, http.StatusOK, comment)
}

// Delete DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like POST /comments/{id}/like
func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.commentService.ToggleLike(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	status := model.StatusUnliked
	if result.Active {
		status = model.StatusLiked
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"likes_count": result.Count,
	})
}

func (h *CommentHandler) writeComment(w http.ResponseWriter, r *http.Request, status int, comment *model.Comment) {
	rep, err := h.serializer.Comment(r.Context(), comment)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, status, rep)
}
