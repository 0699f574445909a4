package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
	log          *logrus.Entry
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		log:          logger.For("MediaHandler"),
	}
}

// UploadProfilePicture handles POST /media/profile_picture
// The stored URL is returned for the client to PATCH onto its profile.
func (h *MediaHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	maxFormSize := int64(model.MaxProfilePictureSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Profile picture exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, h.log, model.NewValidationError("file", "No file was submitted."))
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadProfilePicture(r.Context(), file, header)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, upload)
}

// PresignPostImage handles POST /media/post_image/presign
func (h *MediaHandler) PresignPostImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB is plenty for JSON
	var req model.PresignPostImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ContentType) == "" {
		writeServiceError(w, h.log, model.NewValidationError("content_type", "This field is required."))
		return
	}

	res, err := h.mediaService.PresignPostImage(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
