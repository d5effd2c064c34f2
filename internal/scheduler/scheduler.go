package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"RatePulse/internal/cache"
	"RatePulse/internal/collector"
	"RatePulse/internal/store"
)

// warmDays is the range the refresh job keeps warm; it matches the default
// window the API serves.
const warmDays = 30

// Scheduler runs the periodic cache warms and sample regeneration.
type Scheduler struct {
	Cron     *cron.Cron
	Resolver *collector.Collector
	Snapshot collector.SnapshotFetcher
	Cache    *cache.Cache
	Store    *store.Store
	Base     string
	CSVMode  bool
	Log      *logrus.Logger
	Ctx      context.Context
}

// New creates a Scheduler.
func New(ctx context.Context, log *logrus.Logger, resolver *collector.Collector, snapshot collector.SnapshotFetcher, c *cache.Cache, st *store.Store, base string, csvMode bool) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Resolver: resolver,
		Snapshot: snapshot,
		Cache:    c,
		Store:    st,
		Base:     base,
		CSVMode:  csvMode,
		Log:      log,
		Ctx:      ctx,
	}
}

// RegisterAll registers the refresh and sample-regeneration jobs.
func (s *Scheduler) RegisterAll(refreshCron, sampleCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if s.CSVMode {
		if _, err := s.Cron.AddFunc(sampleCron, s.sampleTask); err != nil {
			return fmt.Errorf("register sample task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.Log.Info("scheduler stopped")
}

// refreshTask re-resolves the default TRM range and the base snapshot,
// replacing the cache entries so dashboards stay warm past the TTL.
func (s *Scheduler) refreshTask() {
	end := time.Now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -warmDays)

	series, err := s.Resolver.Resolve(s.Ctx, start, end)
	if err != nil {
		s.Log.Errorf("refresh: resolve trm: %v", err)
	} else {
		s.Cache.Put(cache.TRMKey(start, end), series)
		s.Log.Infof("refresh: trm warmed with %d points via %s", len(series.Points), series.Source)
	}

	snap, err := s.Snapshot.Latest(s.Ctx, s.Base)
	if err != nil {
		s.Log.Errorf("refresh: fetch snapshot: %v", err)
		return
	}
	s.Cache.Put(cache.RatesKey(s.Base), snap)
	s.Log.Infof("refresh: snapshot warmed with %d rates", len(snap.Rates))
}

// sampleTask regenerates the offline snapshot file (csv mode only).
func (s *Scheduler) sampleTask() {
	path, err := s.Store.WriteSample(warmDays)
	if err != nil {
		s.Log.Errorf("sample: %v", err)
		return
	}
	s.Cache.Purge()
	s.Log.Infof("sample: regenerated %s", path)
}
