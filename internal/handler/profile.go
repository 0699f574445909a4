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

type ProfileHandler struct {
	profileService *service.ProfileService
	log            *logrus.Entry
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            logger.For("ProfileHandler"),
	}
}

// List GET /profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	profiles, count, err := h.profileService.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writePage(w, r, page, count, serializer.Profiles(profiles))
}

// Get GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Profile(profile))
}

// Create POST /profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Create(r.Context(), actorID, &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, serializer.Profile(profile))
}

// Update handles both PUT and PATCH /profiles/{id}.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), actorID, id, &req, isPartial(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Profile(profile))
}

// Delete DELETE /profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.profileService.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Follow toggles following the profile's owner.
// POST /profiles/{id}/follow
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	following, err := h.profileService.ToggleFollow(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	status := model.StatusUnfollowed
	if following {
		status = model.StatusFollowed
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Followers GET /profiles/{id}/followers
func (h *ProfileHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.writeRelation(w, r, h.profileService.Followers)
}

// Following GET /profiles/{id}/following
func (h *ProfileHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.writeRelation(w, r, h.profileService.Following)
}

func (h *ProfileHandler) writeRelation(w http.ResponseWriter, r *http.Request, load func(context.Context, int64) ([]model.Profile, error)) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	profiles, err := load(r.Context(), id)
	if err != nil {
		writeRawError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, serializer.Profiles(profiles))
}
