package analytics

import (
	"errors"

	"RatePulse/internal/model"
)

// Summarize computes the headline statistics of a series: latest value,
// change versus the previous point, mean, min and max. Delta is omitted for
// a single-point series.
func Summarize(s model.RateSeries) (model.Summary, error) {
	if s.Empty() {
		return model.Summary{}, errors.New("empty series")
	}

	sum := model.Summary{
		Latest: s.Latest().Rate,
		Min:    s.Points[0].Rate,
		Max:    s.Points[0].Rate,
	}
	total := 0.0
	for _, p := range s.Points {
		total += p.Rate
		if p.Rate < sum.Min {
			sum.Min = p.Rate
		}
		if p.Rate > sum.Max {
			sum.Max = p.Rate
		}
	}
	sum.Mean = total / float64(len(s.Points))

	if n := len(s.Points); n >= 2 {
		sum.Delta = s.Points[n-1].Rate - s.Points[n-2].Rate
		sum.HasDelta = true
	}
	return sum, nil
}
