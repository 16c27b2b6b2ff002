package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/container"
	"github.com/oksasatya/account-service/internal/interface/middleware"
	"github.com/oksasatya/account-service/internal/router"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	userRepo, closeStore, err := container.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open credential store: %v", err)
	}
	defer closeStore()
	logger.WithField("driver", cfg.StoreDriver).Info("credential store ready")

	notifier, err := container.NewNotifier(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init mailer: %v", err)
	}

	// Redis (public profile cache). Optional.
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			helpers.LogError(logger, "redis unavailable, profile cache disabled", err, nil)
			_ = rdb.Close()
		} else {
			container.SetRedis(rdb)
			defer func() { _ = rdb.Close() }()
		}
		cancel()
	}

	// GCS (profile pictures). Without a bucket, picture uploads are rejected.
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetUploader(helpers.NewGCSUploader(gcsClient, cfg.GCSBucket, cfg.GCSPublicBaseURL, cfg.UploadMaxBytes))
	}

	// RabbitMQ (profile events for the indexer). Optional.
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQProfileQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable, profile events disabled", err, nil)
		} else {
			container.SetRabbitPub(pub)
			defer pub.Close()
		}
	}

	// Elasticsearch (profile search). Optional.
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.Fatalf("failed to init elasticsearch client: %v", err)
		}
		container.SetES(es)
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.VerificationTTL)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepository(userRepo)
	container.SetJWT(jwtManager)
	container.SetNotifier(notifier)

	validation.Init()

	if err := container.Service().EnsureSearchIndex(ctx); err != nil {
		helpers.LogError(logger, "profiles index not ready, search may fail", err, nil)
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}
