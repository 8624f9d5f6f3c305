package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pixeldesk/backend/internal/api"
	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/internal/config"
	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/events"
	"github.com/pixeldesk/backend/internal/fcm"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/internal/repository"
	"github.com/pixeldesk/backend/internal/storage"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting PixelDesk API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	// Database
	ctx := context.Background()
	db, err := initDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	// Redis and the event fan-out
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	rdb := goredis.NewClient(redisOpts)
	defer rdb.Close()

	bus := events.NewBus()
	bridge := events.NewBridge(bus, rdb, logger)

	bridgeCtx, bridgeCancel := context.WithCancel(ctx)
	go bridge.Run(bridgeCtx)

	// Core dependencies
	repo := repository.NewPostgresRepository(db)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	googleAuth := auth.NewGoogleAuthVerifier(cfg.Google.ClientIDs)
	consoleGate := auth.NewConsoleGate(cfg.Admin.ConsolePasswordHash, cfg.Admin.LockoutAttempts, cfg.Admin.LockoutWindow)
	limiter := ratelimit.NewLimiter(repo)

	if googleAuth.IsConfigured() {
		logger.Info("Google sign-in is configured")
	} else {
		logger.Warn("Google sign-in is NOT configured - set GOOGLE_CLIENT_ID to enable")
	}

	// Firebase push notifications, optional
	fcmClient, err := fcm.NewClient(ctx, logger, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		logger.Warn("Failed to initialize Firebase client - push notifications will be disabled", zap.Error(err))
		fcmClient = nil
	} else {
		logger.Info("Firebase client initialized")
	}

	// File storage
	fileStorage, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// Services
	profileService := domain.NewProfileService(repo, cfg.Admin.AdminEmail, logger)
	notificationService := domain.NewNotificationService(repo, fcmClient, bridge, logger)
	authService := domain.NewAuthService(repo, profileService, jwtManager, googleAuth, logger)
	bookingService := domain.NewBookingService(repo, notificationService, bridge)
	reviewService := domain.NewReviewService(repo, notificationService, bridge)
	contactService := domain.NewContactService(repo, notificationService, bridge)
	themeService := domain.NewThemeService(repo, bridge, logger)
	forumService := domain.NewForumService(repo, bridge)
	chatService := domain.NewChatService(repo, bridge)

	// Subscription hub
	hub := api.NewSubscriptionHub(bus, jwtManager, profileService,
		bookingService, reviewService, contactService, notificationService,
		chatService, themeService, forumService, logger)

	// Handlers
	authHandler := api.NewAuthHandler(authService, profileService, logger)
	googleOAuthHandler := api.NewGoogleOAuthHandler(cfg, authService, logger)
	bookingHandler := api.NewBookingHandler(bookingService, limiter, logger)
	reviewHandler := api.NewReviewHandler(reviewService, limiter, logger)
	contactHandler := api.NewContactHandler(contactService, limiter, logger)
	notificationHandler := api.NewNotificationHandler(notificationService, logger)
	themeHandler := api.NewThemeHandler(themeService, logger)
	forumHandler := api.NewForumHandler(forumService, profileService, limiter, fileStorage, logger)
	chatHandler := api.NewChatHandler(chatService, profileService, limiter, logger)
	adminHandler := api.NewAdminHandler(authService, profileService, consoleGate, logger)
	healthHandler := api.NewHealthHandler(db)

	throttle := middleware.NewIPThrottle(rate.Limit(20), 40)

	router := api.NewRouter(
		authHandler, googleOAuthHandler, bookingHandler, reviewHandler,
		contactHandler, notificationHandler, themeHandler, forumHandler,
		chatHandler, adminHandler, healthHandler, hub,
		jwtManager, profileService, throttle, cfg.Server.AllowedOrigins, logger,
	)
	r := router.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	bridgeCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENV")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func initDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func initStorage(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	if cfg.Storage.Type == "s3" {
		return storage.NewS3Storage(ctx, cfg.Storage)
	}

	baseURL := fmt.Sprintf("%s/uploads", cfg.Server.PublicURL)
	return storage.NewLocalFileStorage(cfg.Storage.LocalDir, baseURL)
}
