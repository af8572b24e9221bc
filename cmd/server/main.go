// Package main runs the speech practice HTTP server with graceful shutdown.
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

	"github.com/speechcoach/backend/config"
	"github.com/speechcoach/backend/internal/audio"
	"github.com/speechcoach/backend/internal/auth"
	"github.com/speechcoach/backend/internal/feedback"
	"github.com/speechcoach/backend/internal/middleware"
	"github.com/speechcoach/backend/internal/pipeline"
	"github.com/speechcoach/backend/internal/scripts"
	"github.com/speechcoach/backend/internal/sessions"
	"github.com/speechcoach/backend/internal/transcribe"
	"github.com/speechcoach/backend/pkg/queue"
	"github.com/speechcoach/backend/pkg/redis"
	"github.com/speechcoach/backend/pkg/response"
	"github.com/speechcoach/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	repo, closeStore, err := sessions.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer closeStore()

	var opts []sessions.ServiceOption
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			opts = append(opts,
				sessions.WithStatsCache(sessions.NewRedisStatsCache(rdb.Client, time.Duration(cfg.Redis.StatsTTLSeconds)*time.Second)),
				sessions.WithProgressQueue(queue.NewQueue(rdb.Client, logger)),
			)
		}
	}

	if cfg.AWS.AudioBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			AudioBucket:     cfg.AWS.AudioBucket,
			PublicBaseURL:   cfg.AWS.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			opts = append(opts, sessions.WithBlobStore(s3Client))
		}
	}

	var transcriber transcribe.Transcriber
	switch cfg.Transcriber.Backend {
	case "whisperx":
		transcriber = transcribe.NewWhisperX(cfg.Transcriber.WhisperXBin, cfg.Transcriber.Model, logger)
	default:
		transcriber = transcribe.NewWhisper(transcribe.WhisperConfig{
			APIKey:  cfg.Transcriber.APIKey,
			BaseURL: cfg.Transcriber.BaseURL,
			Model:   cfg.Transcriber.Model,
			Timeout: time.Duration(cfg.Transcriber.TimeoutSeconds) * time.Second,
		}, logger)
	}

	var provider feedback.Provider
	if cfg.LLM.APIKey != "" {
		provider = feedback.NewChatClient(feedback.ChatConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		}, logger)
	} else {
		logger.Warn("TOGETHER_API_KEY not set, feedback will use the rule-based fallback")
	}
	composer := feedback.NewComposer(provider, feedback.Options{
		Temperature:         cfg.LLM.Temperature,
		MaxTokens:           cfg.LLM.MaxTokens,
		SuggestionMaxTokens: cfg.LLM.SuggestionMaxToken,
	}, logger)

	analyzer := audio.NewAnalyzer(audio.NewDecoder(cfg.Audio.FFmpegBin, cfg.Audio.SampleRate), audio.NewExtractor(), logger)
	pipe := pipeline.New(transcriber, analyzer, composer, cfg.Transcriber.Language, logger)

	sessionService := sessions.NewService(repo, pipe, composer, logger, opts...)
	sessionHandler := sessions.NewHandler(sessionService, cfg.Server.UploadDir, cfg.Server.MaxUploadBytes(), logger)

	library, err := scripts.Load()
	if err != nil {
		logger.Fatal("scripts", zap.Error(err))
	}
	scriptHandler := scripts.NewHandler(library)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Audience)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.MaxMultipartMemory = 8 << 20

	router.GET("/", func(c *gin.Context) { response.OK(c, gin.H{"message": "Speech practice API is running"}) })
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "healthy"}) })

	scriptHandler.RegisterRoutes(router)

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	sessionHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("db_driver", cfg.Database.Driver))
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
