package handler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

type PostHandler struct {
	postService *service.PostService
	serializer  *serializer.Serializer
	log         *logrus.Entry
}

func NewPostHandler(postService *service.PostService, s *serializer.Serializer) *PostHandler {
	return &PostHandler{
		postService: postService,
		serializer:  s,
		log:         logger.For("PostHandler"),
	}
}

// List GET /posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	posts, count, err := h.postService.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writePosts(w, r, page, count, posts, writeServiceError)
}

// Feed returns posts by authors the requester follows.
// GET /posts/feed
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	h.personalized(w, r, h.postService.Feed)
}

// Explore returns posts by authors the requester does not follow.
// GET /posts/explore
func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	h.personalized(w, r, h.postService.Explore)
}

func (h *PostHandler) personalized(w http.ResponseWriter, r *http.Request, load func(context.Context, int64, model.Page) ([]model.Post, int, error)) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	posts, count, err := load(r.Context(), userID, page)
	if err != nil {
		writeRawError(w, h.log, err)
		return
	}
	h.writePosts(w, r, page, count, posts, writeRawError)
}

func (h *PostHandler) writePosts(
	w http.ResponseWriter,
	r *http.Request,
	page model.Page,
	count int,
	posts []model.Post,
	onError func(http.ResponseWriter, *logrus.Entry, error),
) {
	reps, err := h.serializer.Posts(r.Context(), posts, viewerID(r))
	if err != nil {
		onError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, reps)
}

// Get GET /posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writePost(w, r, http.StatusOK, post)
}

// Create POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Create(r.Context(), actorID, &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writePost(w, r, http.StatusCreated, post)
}

// Update handles both PUT and PATCH /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Update(r.Context(), actorID, id, &req, isPartial(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.writePost(w, r, http.StatusOK, post)
}

// Delete DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like POST /posts/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), actorID, id)
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

// Repost POST /posts/{id}/repost
func (h *PostHandler) Repost(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.postService.ToggleRepost(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	status := model.StatusUnreposted
	if result.Active {
		status = model.StatusReposted
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        status,
		"reposts_count": result.Count,
	})
}

func (h *PostHandler) writePost(w http.ResponseWriter, r *http.Request, status int, post *model.Post) {
	rep, err := h.serializer.Post(r.Context(), post, viewerID(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, status, rep)
}
