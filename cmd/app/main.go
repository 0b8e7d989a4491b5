// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-payment-service/internal/config"
	"course-payment-service/internal/domain/ports/adapter"
	payAdapters "course-payment-service/internal/infra/adapters/payment"
	pg "course-payment-service/internal/infra/db/postgres"
	"course-payment-service/internal/infra/ledger"
	"course-payment-service/internal/infra/logging"
	"course-payment-service/internal/infra/metrics"
	red "course-payment-service/internal/infra/redis"
	"course-payment-service/internal/infra/web"
	"course-payment-service/internal/infra/worker"
	"course-payment-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	confirmationRepo := pg.NewConfirmationRepo(pool)

	// ---- Redis (optional; only the rate limiter depends on it) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; verify endpoint is not rate limited")
	}

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Info().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = payAdapters.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
		if err != nil {
			log.Fatalf("razorpay gateway: %v", err)
		}
	}

	// ---- Worker pool for detached side effects ----
	taskPool := worker.NewPool(4, logger)
	taskPool.Start(ctx)
	defer taskPool.Stop()

	// ---- Use cases ----
	notifier := ledger.NewWebhookNotifier(cfg.Ledger.WebhookURL, cfg.Ledger.APIKey)
	notifyUC := usecase.NewNotifyUseCase(notifier, logger)
	provisionUC := usecase.NewProvisionUseCase(cfg.Installment, gateway, logger)
	confirmUC := usecase.NewConfirmUseCase(
		cfg.Gateway.KeySecret,
		confirmationRepo,
		notifyUC,
		provisionUC,
		taskPool,
		cfg.Installment.Policy,
		cfg.Provisioning.Idempotent,
		logger,
	)

	// ---- Admin auth ----
	var auth *web.AuthManager
	if cfg.Admin.JWTSecret != "" && cfg.Admin.APIKey != "" {
		auth = web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.APIKey, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	} else {
		logger.Warn().Msg("admin api disabled: admin.jwt_secret/api_key not set")
	}

	// ---- HTTP server ----
	srv := web.NewServer(confirmUC, confirmationRepo, limiter, cfg.Server.RateLimit, cfg.Server.RateWindow, auth, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
