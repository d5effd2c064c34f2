package analytics

import "RatePulse/internal/model"

// WeeklyOHLC aggregates a daily series into one bar per ISO calendar week:
// open is the first rate of the week, close the last, high/low the extrema.
// Weeks without points produce no bar. The input must be date-ascending.
func WeeklyOHLC(s model.RateSeries) []model.OhlcBar {
	if s.Empty() {
		return nil
	}

	var bars []model.OhlcBar
	var bar model.OhlcBar
	started := false
	currentKey := 0

	for _, p := range s.Points {
		year, week := p.Date.ISOWeek()
		key := year*100 + week

		if !started || key != currentKey {
			if started {
				bars = append(bars, bar)
			}
			bar = model.OhlcBar{WeekStart: p.Date, Open: p.Rate, High: p.Rate, Low: p.Rate, Close: p.Rate}
			currentKey = key
			started = true
			continue
		}
		if p.Rate > bar.High {
			bar.High = p.Rate
		}
		if p.Rate < bar.Low {
			bar.Low = p.Rate
		}
		bar.Close = p.Rate
	}
	if started {
		bars = append(bars, bar)
	}
	return bars
}
