package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"RatePulse/internal/model"
)

// SyntheticFetcher is the terminal fallback. It emits one point per business
// day in range around a fixed baseline, so the chain always has something to
// return when every real source is down. Callers can detect it through the
// series Source field.
type SyntheticFetcher struct {
	Baseline float64
	Jitter   float64
	Seed     int64 // 0 means time-based
}

// NewSyntheticFetcher creates the synthetic TRM fetcher.
func NewSyntheticFetcher(baseline, jitter float64, seed int64) *SyntheticFetcher {
	return &SyntheticFetcher{Baseline: baseline, Jitter: jitter, Seed: seed}
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

func (f *SyntheticFetcher) Fetch(_ context.Context, start, end time.Time) (model.RateSeries, error) {
	start, end = day(start), day(end)
	if end.Before(start) {
		return model.RateSeries{}, fmt.Errorf("synthetic: start %s after end %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}

	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var points []model.RatePoint
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		noise := (rng.Float64()*2 - 1) * f.Jitter
		points = append(points, model.RatePoint{Date: d, Rate: f.Baseline + noise})
	}
	if len(points) == 0 {
		return model.RateSeries{}, fmt.Errorf("%w: synthetic: no business days in range", ErrNoData)
	}
	return model.RateSeries{Currency: "COP", Quote: "USD", Source: f.Name(), Points: points}, nil
}
