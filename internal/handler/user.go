package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

type UserHandler struct {
	userService    *service.UserService
	profileService *service.ProfileService
	postService    *service.PostService
	serializer     *serializer.Serializer
	log            *logrus.Entry
}

func NewUserHandler(
	userService *service.UserService,
	profileService *service.ProfileService,
	postService *service.PostService,
	s *serializer.Serializer,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		profileService: profileService,
		postService:    postService,
		serializer:     s,
		log:            logger.For("UserHandler"),
	}
}

// List returns users filtered by ?username, ?is_active and ?search.
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	filter, err := userFilter(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	users, count, err := h.userService.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, h.serializer.Users(r.Context(), users))
}

func userFilter(r *http.Request) (model.UserFilter, error) {
	q := r.URL.Query()
	filter := model.UserFilter{Search: strings.TrimSpace(q.Get("search"))}

	if q.Has("username") {
		username := q.Get("username")
		filter.Username = &username
	}
	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, model.NewValidationError("is_active", "Enter a valid boolean.")
		}
		filter.IsActive = &active
	}
	return filter, nil
}

// Create registers a user without issuing tokens.
// POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.serializer.User(r.Context(), user))
}

// Get GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.serializer.User(r.Context(), user))
}

// Update handles both PUT and PATCH /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), actorID, id, &req, isPartial(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.serializer.User(r.Context(), user))
}

// Delete DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile GET /users/{id}/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.userService.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	profile, err := h.profileService.GetByUserID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Profile(profile))
}

// Posts GET /users/{id}/posts
func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	h.writeUserPosts(w, r, h.postService.ByAuthor)
}

// LikedPosts GET /users/{id}/liked_posts
func (h *UserHandler) LikedPosts(w http.ResponseWriter, r *http.Request) {
	h.writeUserPosts(w, r, h.postService.LikedBy)
}

// RepostedPosts GET /users/{id}/reposted_posts
func (h *UserHandler) RepostedPosts(w http.ResponseWriter, r *http.Request) {
	h.writeUserPosts(w, r, h.postService.RepostedBy)
}

func (h *UserHandler) writeUserPosts(w http.ResponseWriter, r *http.Request, load func(context.Context, int64) ([]model.Post, error)) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	posts, err := load(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	reps, err := h.serializer.Posts(r.Context(), posts, viewerID(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reps)
}
