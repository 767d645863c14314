package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"contracthub/config"
	"contracthub/handler"
	"contracthub/middleware"
	"contracthub/pkg/logger"
	"contracthub/service"
)

func main() {
	// Load configuration; run on defaults when no config file is present
	cfg, err := config.Load("config.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded", "driver", cfg.Database.Driver, "storage", cfg.Storage.Backend)

	// Connect to the relational store and migrate the schema
	db, err := service.OpenDatabase(&cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Initialize blob storage for attachments
	var store service.BlobStore
	switch cfg.Storage.Backend {
	case "minio":
		minioStore, err := service.NewMinioStore(&cfg.Storage.Minio)
		if err != nil {
			slog.Error("failed to initialize minio storage", "error", err)
			os.Exit(1)
		}
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure minio bucket", "error", err)
			os.Exit(1)
		}
		store = minioStore
	default:
		localStore, err := service.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			slog.Error("failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		store = localStore
	}

	// Initialize services
	userSvc := service.NewUserService(db)
	contractSvc := service.NewContractService(db)
	attachmentSvc := service.NewAttachmentService(db, store, cfg.Upload.MaxSizeMB)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userSvc, &cfg.Auth)
	contractHandler := handler.NewContractHandler(contractSvc)
	attachmentHandler := handler.NewAttachmentHandler(attachmentSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit(100, time.Minute)) // 100 requests per minute per IP

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth, userSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
		protected.PUT("/contracts/:id/approve", contractHandler.Approve)
		protected.POST("/contracts/:id/attachments", attachmentHandler.Upload)
		protected.GET("/contracts/attachments/:attachmentId", attachmentHandler.Download)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
