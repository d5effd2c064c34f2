package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"RatePulse/internal/cache"
	"RatePulse/internal/collector"
	"RatePulse/internal/config"
	"RatePulse/internal/logger"
	"RatePulse/internal/scheduler"
	"RatePulse/internal/server"
	"RatePulse/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("config validation: %v", err)
	}

	log := logger.Init(cfg.Log.Level)
	log.Info("RatePulse starting...")

	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	// TRM fallback chain, most authoritative first, synthetic last.
	col := collector.New(log,
		collector.NewOpenDataFetcher(cfg.Sources.OpenDataURL, timeout, log),
		collector.NewBanRepFetcher(cfg.Sources.BanRepURL, timeout, log),
		collector.NewScrapeFetcher(cfg.Sources.ScrapeURL, timeout, log),
		collector.NewSyntheticFetcher(cfg.Synthetic.Baseline, cfg.Synthetic.Jitter, cfg.Synthetic.Seed),
	)

	st := store.New(cfg.SnapshotPath(), cfg.Synthetic.Seed)

	var snapshot collector.SnapshotFetcher
	csvMode := cfg.Rates.Mode == "csv"
	if csvMode {
		snapshot = st
	} else {
		snapshot = collector.NewERAPIFetcher(cfg.Sources.RatesAPIURL, timeout, log)
	}
	log.Infof("rates data source: %s", snapshot.Name())

	memo := cache.New(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)

	srv := server.New(log, memo, col, snapshot, st, server.Options{
		DataDir: cfg.Data.Dir,
		Base:    cfg.Rates.Base,
		CSVMode: csvMode,
		Seed:    cfg.Synthetic.Seed,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, log, col, snapshot, memo, st, cfg.Rates.Base, csvMode)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.SampleCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}
	go func() {
		log.Infof("listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	log.Info("RatePulse stopped")
}
