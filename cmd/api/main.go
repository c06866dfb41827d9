package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-form-service/config"
	_ "contact-form-service/docs" // Important for Swagger
	v1 "contact-form-service/internal/delivery/http/v1"
	"contact-form-service/internal/repository/memory"
	"contact-form-service/internal/usecase"
	"contact-form-service/pkg/logger"
	"contact-form-service/pkg/redis"
	"contact-form-service/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Contact Form API
// @version         1.0
// @description     Contact form sessions with field validation and submitted-values display.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logCloser := logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()
	logger.Log.Info("Starting contact form service", "port", cfg.Port, "validate_on_change", cfg.ValidateOnChange)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Redis (optional, shared rate limits)
	var redisClient *goredis.Client
	checks := map[string]usecase.HealthCheckFunc{}
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redis.NewClient(rootCtx, redis.Config{
			URL:      cfg.UpstashRedisURL,
			Password: cfg.UpstashRedisPassword,
		})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		} else {
			defer redisClient.Close()
			checks["redis"] = redis.HealthCheck(redisClient)
		}
	}

	// 4. Setup Repositories
	formRepo := memory.NewFormRepository(cfg.SessionTTL)
	formRepo.StartSweeper(rootCtx, time.Minute)

	// 5. Setup UseCases
	validator := usecase.NewContactValidator(validation.New())
	machine := usecase.NewFormMachine(validator, cfg.ValidateOnChange)
	contactFormUC := usecase.NewContactFormUsecase(formRepo, machine)
	healthUC := usecase.NewHealthUsecase(checks)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactFormUC: contactFormUC,
		HealthUC:      healthUC,
		Redis:         redisClient,
		Config:        cfg,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
