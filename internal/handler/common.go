package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/model"
	"socialhub/internal/transport/http/middleware"
)

// writeServiceError maps domain errors onto HTTP responses. Anything unknown is
// logged and reported as a 500 without internal detail.
func writeServiceError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteValidationError(w, "Invalid input.", verr.Fields)
	case errors.Is(err, model.ErrInvalidPage):
		httputil.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found.")
	case errors.Is(err, model.ErrProfileNotFound),
		errors.Is(err, model.ErrPostNotFound),
		errors.Is(err, model.ErrCommentNotFound),
		errors.Is(err, model.ErrMessageNotFound):
		httputil.WriteNotFound(w, "Not found.")
	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, model.ErrNotMessageSender),
		errors.Is(err, model.ErrNotMessageReceiver):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrProfileExists):
		httputil.WriteBadRequest(w, "Profile already exists for this user.")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the size limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	default:
		log.WithError(err).Error("Request failed")
		httputil.WriteInternalError(w, "Internal server error")
	}
}

// writeRawError is writeServiceError for endpoints whose 500s carry the
// underlying error text.
func writeRawError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) || isKnown(err) {
		writeServiceError(w, log, err)
		return
	}
	log.WithError(err).Error("Request failed")
	httputil.WriteInternalError(w, err.Error())
}

func isKnown(err error) bool {
	for _, known := range []error{
		model.ErrInvalidPage,
		model.ErrUserNotFound,
		model.ErrProfileNotFound,
		model.ErrPostNotFound,
		model.ErrForbidden,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// decodeJSON reads the request body into dst, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// urlID parses the named chi URL parameter. Non-numeric ids cannot match any
// row, so they are answered with 404.
func urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		httputil.WriteNotFound(w, "Not found.")
		return 0, false
	}
	return id, true
}

// requireUser returns the authenticated user id, answering 401 when absent.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication credentials were not provided.")
		return 0, false
	}
	return userID, true
}

// viewerID returns the authenticated user id, or nil for anonymous requests.
func viewerID(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}

// isPartial reports whether the request is a PATCH rather than a full PUT.
func isPartial(r *http.Request) bool {
	return r.Method == http.MethodPatch
}
