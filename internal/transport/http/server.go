package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/sirupsen/logrus"

	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/handler"
	"socialhub/internal/logger"
	"socialhub/internal/queue"
	"socialhub/internal/redis"
	"socialhub/internal/repository"
	"socialhub/internal/serializer"
	"socialhub/internal/service"
)

// activityStreamMaxLen bounds the activity stream; consumers are external.
const activityStreamMaxLen = 100000

// expiredTokenRetention keeps expired refresh tokens around long enough to
// detect late reuse attempts before they are pruned.
const expiredTokenRetention = 7 * 24 * time.Hour

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel)
	log := logger.For("Server")

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Activity events (optional)
	emitter, closeRedis := newEmitter(cfg, log)
	defer closeRedis()

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)

	ser := serializer.New(userRepo, profileRepo, postRepo, commentRepo, logger.For("Serializer"))

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(tokenRepo, cfg)
	if _, err := authService.PruneExpiredTokens(context.Background(), expiredTokenRetention); err != nil {
		log.WithError(err).Warn("Failed to prune expired refresh tokens")
	}
	profileService := service.NewProfileService(profileRepo, followRepo, emitter)
	postService := service.NewPostService(postRepo, userRepo, emitter)
	commentService := service.NewCommentService(commentRepo, postRepo, emitter)
	messageService := service.NewMessageService(messageRepo, userRepo, emitter)

	routerCfg := RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService, ser),
		UserHandler:    handler.NewUserHandler(userService, profileService, postService, ser),
		ProfileHandler: handler.NewProfileHandler(profileService),
		PostHandler:    handler.NewPostHandler(postService, ser),
		CommentHandler: handler.NewCommentHandler(commentService, ser),
		MessageHandler: handler.NewMessageHandler(messageService, ser),
		JWTSecret:      cfg.JWTSecret,
	}

	// 5. Media storage (optional)
	if cfg.StorageEnabled() {
		mediaService, err := service.NewMediaService(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("failed to init media storage: %w", err)
		}
		routerCfg.MediaHandler = handler.NewMediaHandler(mediaService)
	} else {
		log.Warn("S3 storage not configured, media routes disabled")
	}

	// 6. Setup Server
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithField("addr", srv.Addr).Info("Starting server")
	return srv.ListenAndServe()
}

// newEmitter connects the activity stream publisher. Without a reachable
// Redis, events are dropped.
func newEmitter(cfg *config.Config, log *logrus.Entry) (*queue.Emitter, func()) {
	client := redis.ConnectOptional(context.Background(), cfg.RedisURL, log)
	if client == nil {
		return nil, func() {}
	}
	return queue.NewEmitter(queue.NewPublisher(client.Client, activityStreamMaxLen)), func() { client.Close() }
}
