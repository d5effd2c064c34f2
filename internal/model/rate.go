package model

import "time"

// RatePoint is a single dated observation of an exchange rate.
type RatePoint struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// RateSeries is a date-ascending sequence of rate observations for one
// currency pair. Source names the fetcher that produced the data, so callers
// can tell authoritative values from fallback/synthetic ones.
type RateSeries struct {
	Currency string      `json:"currency"`
	Quote    string      `json:"quote"`
	Source   string      `json:"source"`
	Points   []RatePoint `json:"points"`
}

func (s RateSeries) Empty() bool { return len(s.Points) == 0 }

// Latest returns the most recent point. Only valid on a non-empty series.
func (s RateSeries) Latest() RatePoint { return s.Points[len(s.Points)-1] }

// RateSnapshot maps currency codes to their rate against Base
// (units of currency per 1 unit of Base).
type RateSnapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updated_at"`
	Source    string             `json:"source"`
}

// OhlcBar summarizes one calendar week of a series.
type OhlcBar struct {
	WeekStart time.Time `json:"week_start"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Summary holds the headline statistics of a series. Delta is only
// meaningful when HasDelta is set (it needs at least two points).
type Summary struct {
	Latest   float64 `json:"latest"`
	Delta    float64 `json:"delta"`
	HasDelta bool    `json:"has_delta"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
