package collector

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"RatePulse/internal/model"
)

// Sentinel errors wrapped by fetchers. The collector advances on either;
// they stay distinguishable for logs and tests.
var (
	// ErrUnavailable signals a transport, HTTP status, or parse failure.
	ErrUnavailable = errors.New("source unavailable")
	// ErrNoData signals a well-formed response with no rows in range.
	ErrNoData = errors.New("no data in requested range")
)

// SeriesFetcher fetches a date-ascending rate series for a date range.
type SeriesFetcher interface {
	Fetch(ctx context.Context, start, end time.Time) (model.RateSeries, error)
	Name() string
}

// SnapshotFetcher returns the current rates of all currencies against base.
type SnapshotFetcher interface {
	Latest(ctx context.Context, base string) (model.RateSnapshot, error)
	Name() string
}

const dateLayout = "2006-01-02"

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// day truncates t to midnight UTC so points compare by calendar date.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clampSortDedup keeps points inside [start, end], sorts them ascending and
// drops duplicate dates (first occurrence wins after sorting).
func clampSortDedup(points []model.RatePoint, start, end time.Time) []model.RatePoint {
	start, end = day(start), day(end)
	kept := make([]model.RatePoint, 0, len(points))
	for _, p := range points {
		d := day(p.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		kept = append(kept, model.RatePoint{Date: d, Rate: p.Rate})
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })
	out := kept[:0]
	var last time.Time
	for _, p := range kept {
		if !last.IsZero() && p.Date.Equal(last) {
			continue
		}
		out = append(out, p)
		last = p.Date
	}
	return out
}
