package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thivinthegreat/gold-rate-tracker/internal/config"
	"github.com/thivinthegreat/gold-rate-tracker/internal/metrics"
	"github.com/thivinthegreat/gold-rate-tracker/internal/notifier"
	"github.com/thivinthegreat/gold-rate-tracker/internal/recorder"
	"github.com/thivinthegreat/gold-rate-tracker/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] gold-rate-tracker starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	log.Printf("[INFO] history: %s -> snapshot: %s", cfg.History.Path, cfg.Output.SnapshotPath)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sink scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sink = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	m := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	sched := scheduler.NewScheduler(ctx,
		scheduler.Paths{History: cfg.History.Path, Snapshot: cfg.Output.SnapshotPath},
		cfg.Schema(), sink, rec, m, health)

	// One-shot mode for external schedulers
	if os.Getenv("RUN_ONCE") == "true" {
		r, err := sched.RunCycle()
		if err != nil {
			log.Printf("[ERROR] update cycle: %v", err)
		}
		if r == nil {
			rec.Close()
			os.Exit(1)
		}
		return
	}

	if err := sched.Register(cfg.Schedule.UpdateCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, health, map[string]http.Handler{
			"/report": sched.Snapshot,
		})
		srv.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Stop(shutdownCtx)
		}()
	}

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing update cycle now")
		go sched.RunNow()
	}

	log.Println("[INFO] gold-rate-tracker is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] gold-rate-tracker stopped")
}
