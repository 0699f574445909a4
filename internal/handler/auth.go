package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"socialhub/internal/httputil"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	serializer  *serializer.Serializer
	log         *logrus.Entry
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService, s *serializer.Serializer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		serializer:  s,
		log:         logger.For("AuthHandler"),
	}
}

type registerResponse struct {
	User    serializer.UserRepresentation `json:"user"`
	Refresh string                        `json:"refresh"`
	Access  string                        `json:"access"`
}

type tokenResponse struct {
	Access  string                        `json:"access"`
	Refresh string                        `json:"refresh"`
	User    serializer.UserRepresentation `json:"user"`
}

// Register creates an account and signs it in.
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	pair, err := h.authService.GenerateTokenPair(r.Context(), user.ID, r.UserAgent(), clientIP(r))
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("Failed to issue tokens after registration")
		httputil.WriteInternalError(w, "Failed to generate tokens")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		User:    h.serializer.User(r.Context(), user),
		Refresh: pair.Refresh,
		Access:  pair.Access,
	})
}

// Token exchanges credentials for a token pair.
// POST /auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	verr := &model.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if verr.HasErrors() {
		writeServiceError(w, h.log, verr)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "No active account found with the given credentials")
			return
		}
		h.log.WithError(err).Error("Login failed")
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	pair, err := h.authService.GenerateTokenPair(r.Context(), user.ID, r.UserAgent(), clientIP(r))
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("Failed to issue tokens")
		httputil.WriteInternalError(w, "Failed to generate tokens")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		User:    h.serializer.User(r.Context(), user),
	})
}

// Refresh rotates a refresh token.
// POST /auth/token/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeServiceError(w, h.log, model.NewValidationError("refresh", "This field is required."))
		return
	}

	pair, err := h.authService.RefreshTokens(r.Context(), req.Refresh, r.UserAgent(), clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Token is invalid or expired")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token reuse detected. Please login again.")
		default:
			h.log.WithError(err).Error("Failed to refresh tokens")
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

// Logout revokes a refresh token. Unknown tokens still log out successfully.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeServiceError(w, h.log, model.NewValidationError("refresh", "This field is required."))
		return
	}

	if err := h.authService.RevokeRefreshToken(r.Context(), req.Refresh); err != nil && !errors.Is(err, model.ErrRefreshTokenNotFound) {
		h.log.WithError(err).Error("Failed to revoke refresh token")
		httputil.WriteInternalError(w, "Failed to logout")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// LogoutAll revokes every refresh token of the requester.
// POST /auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.authService.RevokeAllUserTokens(r.Context(), userID); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("Failed to revoke all tokens")
		httputil.WriteInternalError(w, "Failed to logout from all devices")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out from all devices",
	})
}

// Me returns the currently authenticated user.
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.serializer.User(r.Context(), user))
}

// clientIP extracts the client IP, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
