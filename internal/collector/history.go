package collector

import (
	"math/rand"
	"strings"
	"time"

	"RatePulse/internal/model"
)

// DefaultHistoryCurrencies are the commonly tracked currencies for the
// historical-trend view.
var DefaultHistoryCurrencies = []string{"EUR", "GBP", "JPY", "CAD", "AUD", "CNY", "MXN", "BRL", "PEN"}

// historyVariation bounds the per-point deviation from the snapshot rate.
const historyVariation = 0.05

// History simulates a trailing daily series per currency by perturbing the
// snapshot rate within ±5%. The rate API has no free historical endpoint, so
// trend views run on simulated data; seed it for deterministic output.
// Currencies missing from the snapshot are omitted.
func History(snap model.RateSnapshot, days int, currencies []string, seed int64) map[string]model.RateSeries {
	if days <= 0 {
		days = 30
	}
	if len(currencies) == 0 {
		currencies = DefaultHistoryCurrencies
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	today := day(time.Now())

	out := make(map[string]model.RateSeries, len(currencies))
	for _, cur := range currencies {
		cur = strings.ToUpper(strings.TrimSpace(cur))
		base, ok := snap.Rates[cur]
		if !ok || base <= 0 {
			continue
		}
		points := make([]model.RatePoint, 0, days)
		for i := days - 1; i >= 0; i-- {
			variation := (rng.Float64()*2 - 1) * historyVariation
			points = append(points, model.RatePoint{
				Date: today.AddDate(0, 0, -i),
				Rate: base * (1 + variation),
			})
		}
		out[cur] = model.RateSeries{Currency: cur, Quote: snap.Base, Source: "synthetic", Points: points}
	}
	return out
}
