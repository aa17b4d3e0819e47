package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"gatherly/config"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/email"
	delivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/repository/kv"
	"gatherly/internal/services"
	"gatherly/internal/store"
)

// @title Gatherly API
// @version 1.0
// @description Event management API: sign up, create events, RSVP.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx := context.Background()
	storage, cleanup, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Error("storage init failed", "backend", cfg.StorageBackend, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	sessionStore := store.NewSessionStore(ctx, storage, logger)
	eventStore := store.NewEventStore(ctx, storage, logger)

	authenticator, err := auth.NewSimulated(auth.SimulatedConfig{
		Username: cfg.AuthUsername,
		Password: cfg.AuthPassword,
		Latency:  cfg.AuthLatency,
	})
	if err != nil {
		logger.Error("auth init failed", "err", err)
		os.Exit(1)
	}
	issuer, verifier := auth.NewJWTCodec(cfg.JWTSecret, cfg.JWTExpiry)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer init failed", "err", err)
		os.Exit(1)
	}
	notifier := services.NewNotifier(logger)

	authController := controllers.NewAuthController(logger, authenticator, sessionStore, issuer, mailer)
	eventController := controllers.NewEventController(logger, eventStore, notifier)

	mux := delivery.NewRouter(authController, eventController, verifier)
	handler := middleware.LoggingMiddleware(logger,
		middleware.CORS(cfg.CORSAllowedOrigins, mux))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port, "storage", cfg.StorageBackend, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Writes are synchronous, so shutdown only needs to drain requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("stopped")
}

// newStorage builds the configured key-value backend. The returned cleanup
// closes the underlying connection, if any.
func newStorage(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return kv.NewPostgresStore(db), func() { db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return kv.NewRedisStore(client), func() { client.Close() }, nil
	case "memory":
		return kv.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
