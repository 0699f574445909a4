package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialhub/internal/handler"
	"socialhub/internal/httputil"
	"socialhub/internal/monitoring"
	authmw "socialhub/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProfileHandler *handler.ProfileHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	MessageHandler *handler.MessageHandler
	// MediaHandler is nil when object storage is not configured.
	MediaHandler *handler.MediaHandler
	JWTSecret    string
}

// NewRouter creates and configures a new Chi router with all route groups.
// Reads are public with optional authentication; writes and every message
// route require a valid access token.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(monitoring.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := authmw.AuthMiddleware(cfg.JWTSecret)
	optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/token", cfg.AuthHandler.Token)
		r.Post("/token/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
		r.With(requireAuth).Post("/logout-all", cfg.AuthHandler.LogoutAll)
	})

	r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", cfg.UserHandler.List)
			r.Post("/", cfg.UserHandler.Create)
			r.Get("/{id}", cfg.UserHandler.Get)
			r.Get("/{id}/profile", cfg.UserHandler.Profile)
			r.Get("/{id}/posts", cfg.UserHandler.Posts)
			r.Get("/{id}/liked_posts", cfg.UserHandler.LikedPosts)
			r.Get("/{id}/reposted_posts", cfg.UserHandler.RepostedPosts)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/{id}", cfg.UserHandler.Update)
			r.Patch("/{id}", cfg.UserHandler.Update)
			r.Delete("/{id}", cfg.UserHandler.Delete)
		})
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", cfg.ProfileHandler.List)
			r.Get("/{id}", cfg.ProfileHandler.Get)
			r.Get("/{id}/followers", cfg.ProfileHandler.Followers)
			r.Get("/{id}/following", cfg.ProfileHandler.Following)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", cfg.ProfileHandler.Create)
			r.Put("/{id}", cfg.ProfileHandler.Update)
			r.Patch("/{id}", cfg.ProfileHandler.Update)
			r.Delete("/{id}", cfg.ProfileHandler.Delete)
			r.Post("/{id}/follow", cfg.ProfileHandler.Follow)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", cfg.PostHandler.List)
			r.Get("/{id}", cfg.PostHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/feed", cfg.PostHandler.Feed)
			r.Get("/explore", cfg.PostHandler.Explore)
			r.Post("/", cfg.PostHandler.Create)
			r.Put("/{id}", cfg.PostHandler.Update)
			r.Patch("/{id}", cfg.PostHandler.Update)
			r.Delete("/{id}", cfg.PostHandler.Delete)
			r.Post("/{id}/like", cfg.PostHandler.Like)
			r.Post("/{id}/repost", cfg.PostHandler.Repost)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", cfg.CommentHandler.List)
			r.Get("/{id}", cfg.CommentHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", cfg.CommentHandler.Create)
			r.Put("/{id}", cfg.CommentHandler.Update)
			r.Patch("/{id}", cfg.CommentHandler.Update)
			r.Delete("/{id}", cfg.CommentHandler.Delete)
			r.Post("/{id}/like", cfg.CommentHandler.Like)
			r.Post("/{id}/reply", cfg.CommentHandler.Reply)
		})
	})

	r.Route("/messages", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cfg.MessageHandler.List)
		r.Post("/", cfg.MessageHandler.Create)
		r.Get("/conversations", cfg.MessageHandler.Conversations)
		r.Get("/unread_count", cfg.MessageHandler.UnreadCount)
		r.Get("/with/{user_id}", cfg.MessageHandler.With)
		r.Get("/{id}", cfg.MessageHandler.Get)
		r.Put("/{id}", cfg.MessageHandler.Update)
		r.Patch("/{id}", cfg.MessageHandler.Update)
		r.Delete("/{id}", cfg.MessageHandler.Delete)
		r.Post("/{id}/mark_as_read", cfg.MessageHandler.MarkAsRead)
	})

	if cfg.MediaHandler != nil {
		r.Route("/media", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/profile_picture", cfg.MediaHandler.UploadProfilePicture)
			r.Post("/post_image/presign", cfg.MediaHandler.PresignPostImage)
		})
	}

	return r
}
