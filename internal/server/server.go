// Package server exposes the rate data over a JSON HTTP API. It is the
// presentation-layer boundary: it renders nothing, it returns whatever the
// collector and analytics produce.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"RatePulse/internal/cache"
	"RatePulse/internal/collector"
	"RatePulse/internal/model"
	"RatePulse/internal/store"
)

// Resolver resolves the TRM series for a date range.
type Resolver interface {
	Resolve(ctx context.Context, start, end time.Time) (model.RateSeries, error)
}

// Options carries the request-independent settings of the API.
type Options struct {
	DataDir string
	Base    string
	CSVMode bool
	Seed    int64
}

// Server wires the handlers to the pipeline, cache and store.
type Server struct {
	log      *logrus.Logger
	cache    *cache.Cache
	resolver Resolver
	snapshot collector.SnapshotFetcher
	store    *store.Store
	opts     Options
}

// New creates the API server.
func New(log *logrus.Logger, c *cache.Cache, resolver Resolver, snapshot collector.SnapshotFetcher, st *store.Store, opts Options) *Server {
	if opts.Base == "" {
		opts.Base = "USD"
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	return &Server{
		log:      log,
		cache:    c,
		resolver: resolver,
		snapshot: snapshot,
		store:    st,
		opts:     opts,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/trm", s.handleTRM)
		v1.GET("/trm/weekly", s.handleTRMWeekly)
		v1.POST("/trm/export", s.handleTRMExport)
		v1.GET("/rates", s.handleRates)
		v1.GET("/rates/history", s.handleHistory)
		v1.GET("/convert", s.handleConvert)
		v1.POST("/sample", s.handleSample)
	}
	return r
}

func (s *Server) resolveCached(ctx context.Context, start, end time.Time) (model.RateSeries, error) {
	v, err := s.cache.GetOrFetch(cache.TRMKey(start, end), func() (any, error) {
		return s.resolver.Resolve(ctx, start, end)
	})
	if err != nil {
		return model.RateSeries{}, err
	}
	return v.(model.RateSeries), nil
}

func (s *Server) snapshotCached(ctx context.Context, base string) (model.RateSnapshot, error) {
	v, err := s.cache.GetOrFetch(cache.RatesKey(base), func() (any, error) {
		return s.snapshot.Latest(ctx, base)
	})
	if err != nil {
		return model.RateSnapshot{}, err
	}
	return v.(model.RateSnapshot), nil
}

func (s *Server) historyCached(ctx context.Context, base string, days int, currencies []string) (map[string]model.RateSeries, error) {
	v, err := s.cache.GetOrFetch(cache.HistoryKey(base, days, currencies), func() (any, error) {
		if s.opts.CSVMode {
			all, err := s.store.Historical(days)
			if err != nil {
				return nil, err
			}
			return filterCurrencies(all, currencies), nil
		}
		snap, err := s.snapshotCached(ctx, base)
		if err != nil {
			return nil, err
		}
		return collector.History(snap, days, currencies, s.opts.Seed), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]model.RateSeries), nil
}

func filterCurrencies(all map[string]model.RateSeries, currencies []string) map[string]model.RateSeries {
	if len(currencies) == 0 {
		return all
	}
	out := make(map[string]model.RateSeries, len(currencies))
	for _, cur := range currencies {
		if s, ok := all[cur]; ok {
			out[cur] = s
		}
	}
	return out
}
