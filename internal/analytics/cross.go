package analytics

import (
	"fmt"
	"strings"

	"RatePulse/internal/model"
)

// CrossSeries derives the from→to rate series via the shared USD base:
// units of `to` per 1 unit of `from` at each aligned point. Both inputs must
// be quoted against USD and aligned index-for-index; a length mismatch is a
// caller error.
func CrossSeries(from, to string, fromSeries, toSeries model.RateSeries) (model.RateSeries, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if len(fromSeries.Points) != len(toSeries.Points) {
		return model.RateSeries{}, fmt.Errorf("misaligned series: %d vs %d points",
			len(fromSeries.Points), len(toSeries.Points))
	}

	source := fromSeries.Source
	if from == "USD" {
		source = toSeries.Source
	}
	out := model.RateSeries{Currency: from, Quote: to, Source: source}
	out.Points = make([]model.RatePoint, 0, len(fromSeries.Points))
	for i := range fromSeries.Points {
		var rate float64
		switch {
		case from == "USD":
			rate = toSeries.Points[i].Rate
		case to == "USD":
			if fromSeries.Points[i].Rate == 0 {
				return model.RateSeries{}, fmt.Errorf("zero %s rate at index %d", from, i)
			}
			rate = 1 / fromSeries.Points[i].Rate
		default:
			if fromSeries.Points[i].Rate == 0 {
				return model.RateSeries{}, fmt.Errorf("zero %s rate at index %d", from, i)
			}
			rate = toSeries.Points[i].Rate / fromSeries.Points[i].Rate
		}
		date := fromSeries.Points[i].Date
		if from == "USD" {
			date = toSeries.Points[i].Date
		}
		out.Points = append(out.Points, model.RatePoint{Date: date, Rate: rate})
	}
	return out, nil
}

// Convert converts an amount between two currencies through the snapshot's
// base currency.
func Convert(amount float64, from, to string, snap model.RateSnapshot) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == snap.Base {
		toRate, ok := snap.Rates[to]
		if !ok {
			return 0, fmt.Errorf("unknown currency %q", to)
		}
		return amount * toRate, nil
	}

	fromRate, ok := snap.Rates[from]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	if fromRate <= 0 {
		return 0, fmt.Errorf("non-positive rate for %q", from)
	}
	if to == snap.Base {
		return amount / fromRate, nil
	}
	toRate, ok := snap.Rates[to]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}
	return amount / fromRate * toRate, nil
}
