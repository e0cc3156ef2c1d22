// Package main runs the form platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/formforge/backend/config"
	"github.com/formforge/backend/internal/auth"
	"github.com/formforge/backend/internal/exports"
	"github.com/formforge/backend/internal/forms"
	"github.com/formforge/backend/internal/middleware"
	"github.com/formforge/backend/internal/responses"
	"github.com/formforge/backend/pkg/database"
	"github.com/formforge/backend/pkg/queue"
	"github.com/formforge/backend/pkg/redis"
	"github.com/formforge/backend/pkg/response"
	"github.com/formforge/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Forms
	formRepo := forms.NewRepository(pool)
	formHandler := forms.NewHandler(formRepo, rdb.Client, logger)

	// Responses
	responseRepo := responses.NewRepository(pool)
	responseHandler := responses.NewHandler(responseRepo, formRepo, logger)

	// Exports
	exportRepo := exports.NewRepository(pool)
	exportHandler := exports.NewHandler(exportRepo, formRepo, jobQueue, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public: respondent-facing form view and submission. Submission records
	// the respondent when a valid token happens to be present.
	router.GET("/forms/:id/view", formHandler.View)
	router.POST("/forms/:id/submit", middleware.OptionalJWT(jwtService), responseHandler.Submit)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)

		// Forms (owner-scoped)
		api.GET("/forms", formHandler.List)
		api.POST("/forms", formHandler.Create)
		api.GET("/forms/:id", formHandler.GetByID)
		api.PUT("/forms/:id", formHandler.Update)
		api.DELETE("/forms/:id", formHandler.Delete)

		// Responses (owner-scoped)
		api.GET("/forms/:id/responses", responseHandler.ListByForm)
		api.GET("/forms/:id/responses/count", responseHandler.Count)

		// Exports (owner-scoped)
		api.POST("/forms/:id/export", exportHandler.Create)
		api.GET("/forms/:id/exports", exportHandler.ListByForm)
		api.GET("/exports/:id/download-url", exportHandler.DownloadURL)
		api.DELETE("/exports/:id", exportHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
