// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-group-warden/internal/config"
	"telegram-group-warden/internal/infra/logging"
	"telegram-group-warden/internal/infra/metrics"
	"telegram-group-warden/internal/infra/sched"
	"telegram-group-warden/internal/infra/storage"
	tele "telegram-group-warden/internal/infra/telegram"
	"telegram-group-warden/internal/infra/web"
	"telegram-group-warden/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	// .env is optional; real deployments set BOT_TOKEN in the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Storage ----
	store := storage.NewJSONStore(cfg.Storage.Path, logger)
	if err := store.Load(ctx); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("loading snapshot failed")
	}

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram authentication failed")
	}

	// ---- Use cases ----
	moderationUC := usecase.NewModerationUseCase(store, botAdapter, logger)
	wizardUC := usecase.NewWizardUseCase(store, botAdapter, logger)
	settingsUC := usecase.NewSettingsUseCase(store, botAdapter, logger)
	broadcastUC := usecase.NewBroadcastUseCase(store, botAdapter, logger)

	botAdapter.Bind(store, moderationUC, wizardUC, settingsUC)

	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Broadcast worker ----
	worker := sched.NewBroadcastWorker(cfg.Scheduler.Tick, cfg.Scheduler.InitialDelay, broadcastUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops server ----
	opsServer := web.NewServer(&cfg.Admin, logger)
	go func() {
		if err := opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	cancel()
	botAdapter.StopPolling()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown error")
	}
}
