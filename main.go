package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/codrift/codrift/backend/go-services/handlers"
	"github.com/codrift/codrift/backend/go-services/internal/authpw"
	"github.com/codrift/codrift/backend/go-services/internal/config"
	"github.com/codrift/codrift/backend/go-services/internal/database"
	"github.com/codrift/codrift/backend/go-services/internal/docsync"
	docrepo "github.com/codrift/codrift/backend/go-services/internal/document/repository"
	docservice "github.com/codrift/codrift/backend/go-services/internal/document/service"
	"github.com/codrift/codrift/backend/go-services/internal/notifications"
	"github.com/codrift/codrift/backend/go-services/internal/oidc"
	"github.com/codrift/codrift/backend/go-services/internal/presence"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/codrift/codrift/backend/go-services/internal/sessions"
	"github.com/codrift/codrift/backend/go-services/internal/sharing"
	"github.com/codrift/codrift/backend/go-services/internal/storage"
	"github.com/codrift/codrift/backend/go-services/internal/tokens"
	"github.com/codrift/codrift/backend/go-services/internal/users"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
	"github.com/codrift/codrift/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v minio=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "", cfg.MinIO.Endpoint != "")

	ctx := context.Background()

	// Redis: presence, realtime bridge, sessions, blacklist, rate limiting
	if cfg.Redis.Host == "" {
		logger.Fatalf("REDIS_HOST is required")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("redis ping failed (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
	}
	logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)

	// MongoDB: documents, versions, users, notifications, sessions
	mongoClient, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// realtime feed: in-process hub bridged over Redis pub/sub so every
	// instance observes every mutation
	hub := realtime.NewHub()
	bridge := realtime.NewBridge(redisClient, hub, "")
	go bridge.Run(ctx)
	var events realtime.Publisher = bridge

	// presence
	presenceStore := presence.NewRedisStore(redisClient, cfg.Collab.PresenceStale)
	tracker := presence.NewTracker(presenceStore, events, cfg.Collab.PresenceHeartbeat, cfg.Collab.PresenceStale)

	// documents + content sync
	docsRepo := docrepo.NewMongoRepo(db.Collection("documents"), db.Collection("versions"))
	docsSvc := docservice.New(docsRepo, events, tracker)
	syncMgr := docsync.NewManager(docsSvc, cfg.Collab.SaveDebounce)

	// profiles, password accounts, notifications, sharing
	usersRepo := users.NewMongoRepository(db.Collection("users"))
	usersSvc := users.NewService(usersRepo)
	passwordSvc := authpw.NewService(usersRepo)
	notifSvc := notifications.NewService(notifications.NewMongoRepo(db.Collection("notifications")), events)
	sharingSvc := sharing.NewService(docsRepo, usersSvc, notifSvc)

	// refresh sessions live in Redis; the Mongo repository remains available
	// for deployments that want durable sessions instead
	sessionsSvc := sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
	blacklist := sessions.NewBlacklist(redisClient)

	// federated sign-in verifier (optional)
	var federated middleware.Verifier
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			federated = ver
		}
	}
	if federated == nil && os.Getenv("ALLOW_INSECURE_TOKEN") == "true" {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		federated = oidc.NewInsecureVerifier()
	}

	// avatar object storage (optional)
	var avatars *storage.MinIOStorage
	if cfg.MinIO.Endpoint != "" {
		avatars, err = storage.NewMinIOStorage(&cfg.MinIO)
		if err != nil {
			logger.Warnf("minio unavailable, avatar upload disabled: %v", err)
			avatars = nil
		}
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS for dev/test; production should sit behind a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo":   mongoClient.Ping(c.Request.Context(), nil) == nil,
			"redis":   redisClient.Ping(c.Request.Context()).Err() == nil,
			"avatars": avatars != nil,
		}
		if !deps["mongo"] || !deps["redis"] {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// public auth surface
	handlers.NewAuthHandler(cfg, passwordSvc, usersSvc, sessionsSvc, blacklist, federated).Register(r.Group("/"))

	// authenticated API
	accessVerifier := tokens.NewVerifier(cfg.JWT.Secret)
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(accessVerifier, blacklist))
	handlers.NewDocumentsHandler(docsSvc, sharingSvc, syncMgr, tracker).Register(api)
	handlers.NewNotificationsHandler(notifSvc).Register(api)
	handlers.NewMeHandler(usersSvc, avatars).Register(api)
	handlers.NewEventsHandler(docsSvc, hub, syncMgr, tracker).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting document service on %s (debounce=%s heartbeat=%s stale=%s)",
		addr, cfg.Collab.SaveDebounce, cfg.Collab.PresenceHeartbeat, cfg.Collab.PresenceStale)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
