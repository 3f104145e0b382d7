package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alipaygw/internal/cache"
	"alipaygw/internal/config"
	httpx "alipaygw/internal/http"
	"alipaygw/internal/provider"
	"alipaygw/internal/provider/alipay"
	"alipaygw/internal/services/payment"
	"alipaygw/internal/store/postgres"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg config.AppCfg) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env == "sandbox" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func main() {
	cfg := config.Load()
	setupLogger(cfg.App)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()
	repo := postgres.NewRepo(pool)
	gatewayLog := postgres.NewGatewayLog(repo, string(provider.ProviderAlipay))

	// Optional in-flight guard
	var guard payment.InFlightGuard
	if g := cache.NewGuard(cfg.Redis); g != nil {
		if err := g.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, recording without in-flight guard")
		} else {
			guard = g
		}
	}

	gw := alipay.New(cfg, repo, gatewayLog)
	registry := provider.NewRegistry()
	registry.RegisterProvider(provider.ProviderAlipay, gw)

	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:           cfg,
		Gateway:          gw,
		Payments:         payment.NewService(repo, guard),
		Transactions:     repo,
		ProviderRegistry: registry,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("Alipay gateway listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
