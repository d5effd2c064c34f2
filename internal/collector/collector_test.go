package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatePulse/internal/model"
)

type stubFetcher struct {
	name   string
	series model.RateSeries
	err    error
	calls  int
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(_ context.Context, _, _ time.Time) (model.RateSeries, error) {
	s.calls++
	return s.series, s.err
}

func somePoints() []model.RatePoint {
	return []model.RatePoint{
		{Date: date("2024-01-02"), Rate: 3910.55},
		{Date: date("2024-01-03"), Rate: 3920.00},
	}
}

func TestCollector_FirstSuccessShortCircuits(t *testing.T) {
	first := &stubFetcher{name: "first", series: model.RateSeries{Source: "first", Points: somePoints()}}
	second := &stubFetcher{name: "second"}

	col := New(testLogger(), first, second)
	series, err := col.Resolve(context.Background(), date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "first", series.Source)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later sources must not be tried after a success")
}

func TestCollector_AdvancesOnErrorAndEmpty(t *testing.T) {
	failing := &stubFetcher{name: "failing", err: ErrUnavailable}
	empty := &stubFetcher{name: "empty"} // nil error, empty series
	last := &stubFetcher{name: "last", series: model.RateSeries{Source: "last", Points: somePoints()}}

	col := New(testLogger(), failing, empty, last)
	series, err := col.Resolve(context.Background(), date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "last", series.Source)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestCollector_AllSourcesFail(t *testing.T) {
	col := New(testLogger(),
		&stubFetcher{name: "a", err: ErrUnavailable},
		&stubFetcher{name: "b", err: ErrNoData},
	)
	_, err := col.Resolve(context.Background(), date("2024-01-01"), date("2024-01-31"))
	require.Error(t, err)
}

// The synthetic terminal makes the chain total: a weekday-containing range
// resolves even when every remote source is down.
func TestCollector_TotalWithSyntheticTerminal(t *testing.T) {
	col := New(testLogger(),
		&stubFetcher{name: "a", err: ErrUnavailable},
		&stubFetcher{name: "b", err: ErrUnavailable},
		&stubFetcher{name: "c", err: ErrNoData},
		NewSyntheticFetcher(4000, 100, 9),
	)

	series, err := col.Resolve(context.Background(), date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	require.False(t, series.Empty())
	assert.Equal(t, "synthetic", series.Source)

	for i, p := range series.Points {
		assert.Greater(t, p.Rate, 0.0)
		if i > 0 {
			assert.True(t, p.Date.After(series.Points[i-1].Date))
		}
	}
}
