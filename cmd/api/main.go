package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/localserve/localserve-api/internal/http/handlers"
	mw "github.com/localserve/localserve-api/internal/http/middleware"
	"github.com/localserve/localserve-api/internal/platform/auth"
	"github.com/localserve/localserve-api/internal/platform/mailer"
	"github.com/localserve/localserve-api/internal/repo/postgres"
	"github.com/localserve/localserve-api/internal/repo/rediscache"
	"github.com/localserve/localserve-api/internal/service"
	"github.com/localserve/localserve-api/pkg/config"
	"github.com/localserve/localserve-api/pkg/database"
	"github.com/localserve/localserve-api/pkg/events"
	"github.com/localserve/localserve-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	accountRepo := postgres.NewAccountRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	catalogCache := rediscache.NewCatalogCache(redisClient, cfg.Redis.CacheTTL)

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret)

	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	authService := service.NewAuthService(accountRepo, issuer, mail, eventBus, cfg)
	accountService := service.NewAccountService(accountRepo, eventBus)
	catalogService := service.NewCatalogService(serviceRepo, catalogCache, eventBus)

	h := handlers.New(authService, accountService, catalogService, cfg)
	authn := mw.NewAuthenticator(issuer)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(authn),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down api server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("api server shutdown error", "error", err)
		}
	}()

	logger.Info("starting api server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("api server error", "error", err)
		os.Exit(1)
	}
}
