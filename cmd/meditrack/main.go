package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meditrack/internal/config"
	"meditrack/internal/notify"
	"meditrack/internal/repository"
	"meditrack/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	doseRepo := repository.NewDoseRepository(db)
	knowledge := service.LoadKnowledgeBase(cfg.KnowledgeBasePath, logger)

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram unavailable, reminders go to the log", zap.Error(err))
		} else {
			sender = tg
		}
	}

	channel := notify.NewCronChannel(cfg.Timezone, sender, logger)
	if err := channel.RequestPermission(ctx); err != nil {
		logger.Warn("notification permission denied, reminders disabled", zap.Error(err))
	}
	channel.Start()
	defer channel.Stop()

	reminders := service.NewReminderScheduler(channel, logger)
	treatments := service.NewTreatmentService(doseRepo, reminders, knowledge, logger)

	if err := treatments.RearmPending(ctx, time.Now()); err != nil {
		logger.Warn("rearm pending reminders", zap.Error(err))
	}

	logger.Info("meditrack started", zap.String("db", cfg.DatabaseURL))

	// The dashboard reference instant moves in one-minute steps, not
	// continuously.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete")
			return
		case now := <-ticker.C:
			all, err := doseRepo.ListAll(ctx)
			if err != nil {
				logger.Warn("list doses", zap.Error(err))
				continue
			}
			dash := service.GroupForDisplay(all, now)
			logger.Info("dashboard tick",
				zap.Int("today_groups", len(dash.Today)),
				zap.Int("upcoming_groups", len(dash.Upcoming)),
				zap.Int("done", dash.Progress.Done),
				zap.Int("total", dash.Progress.Total),
			)
		}
	}
}
