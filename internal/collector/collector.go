package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"RatePulse/internal/model"
)

// Collector resolves the TRM series by trying fetchers in priority order.
// A fetcher failing or coming back empty is a warning, not an error; the
// next one is tried. With the synthetic fetcher last the chain is total for
// any range containing a business day.
type Collector struct {
	Fetchers []SeriesFetcher
	Log      *logrus.Logger
}

// New creates a Collector trying fetchers in the given order.
func New(log *logrus.Logger, fetchers ...SeriesFetcher) *Collector {
	return &Collector{Fetchers: fetchers, Log: log}
}

// Resolve returns the first non-empty series produced by the chain.
func (c *Collector) Resolve(ctx context.Context, start, end time.Time) (model.RateSeries, error) {
	var lastErr error
	for _, f := range c.Fetchers {
		series, err := f.Fetch(ctx, start, end)
		if err != nil {
			c.Log.Warnf("source %s failed: %v; trying next", f.Name(), err)
			lastErr = err
			continue
		}
		if series.Empty() {
			c.Log.Warnf("source %s returned no rows; trying next", f.Name())
			continue
		}
		c.Log.Infof("resolved %d points via %s", len(series.Points), f.Name())
		return series, nil
	}
	if lastErr == nil {
		lastErr = ErrNoData
	}
	return model.RateSeries{}, fmt.Errorf("all sources exhausted: %w", lastErr)
}
