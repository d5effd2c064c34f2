// Package store persists rate data as flat CSV snapshots and reads them back
// for the offline (csv) data-source mode.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"RatePulse/internal/model"
)

// ErrWrite wraps any I/O failure while persisting a snapshot.
var ErrWrite = errors.New("write failed")

const dateLayout = "2006-01-02"

// sampleRates are the fixed baselines for generated snapshot files.
var sampleRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.85,
	"GBP": 0.75,
	"JPY": 110.0,
	"CAD": 1.25,
	"AUD": 1.35,
	"CNY": 6.5,
	"MXN": 20.0,
	"BRL": 5.0,
	"PEN": 3.7,
}

// sampleCurrencies fixes the column order of generated files.
var sampleCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CNY", "MXN", "BRL", "PEN"}

// sampleVariation bounds the per-row deviation from the baseline rate.
const sampleVariation = 0.05

// Store reads and regenerates the multi-currency snapshot file.
type Store struct {
	SnapshotPath string
	Seed         int64 // 0 means time-based
}

// New creates a Store over the given snapshot file.
func New(snapshotPath string, seed int64) *Store {
	return &Store{SnapshotPath: snapshotPath, Seed: seed}
}

func (s *Store) Name() string { return "csv" }

// SaveSeries writes a series as date,rate rows, creating the parent
// directory if needed. Returns the path written.
func SaveSeries(series model.RateSeries, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: mkdir %s: %v", ErrWrite, dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrWrite, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"date", "rate"})
	for _, p := range series.Points {
		w.Write([]string{
			p.Date.Format(dateLayout),
			strconv.FormatFloat(p.Rate, 'f', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return path, nil
}

// WriteSample regenerates the snapshot file with `days` daily rows per
// currency, each within ±5% of its fixed baseline. Overwrites any existing
// file.
func (s *Store) WriteSample(days int) (string, error) {
	if days <= 0 {
		days = 30
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if dir := filepath.Dir(s.SnapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: mkdir %s: %v", ErrWrite, dir, err)
		}
	}
	f, err := os.Create(s.SnapshotPath)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrWrite, s.SnapshotPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"date", "currency", "rate"})
	today := time.Now()
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dateLayout)
		for _, cur := range sampleCurrencies {
			rate := sampleRates[cur]
			if cur != "USD" { // USD is the base and stays exactly 1
				variation := (rng.Float64()*2 - 1) * sampleVariation
				rate *= 1 + variation
			}
			w.Write([]string{date, cur, strconv.FormatFloat(rate, 'f', -1, 64)})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return s.SnapshotPath, nil
}

type snapshotRow struct {
	date     time.Time
	currency string
	rate     float64
}

func (s *Store) readRows() ([]snapshotRow, error) {
	f, err := os.Open(s.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("snapshot file has no data rows")
	}

	rows := make([]snapshotRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		d, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			continue
		}
		rate, err := strconv.ParseFloat(rec[2], 64)
		if err != nil || rate <= 0 {
			continue
		}
		rows = append(rows, snapshotRow{date: d, currency: rec[1], rate: rate})
	}
	if len(rows) == 0 {
		return nil, errors.New("snapshot file has no valid rows")
	}
	return rows, nil
}

// Latest builds a snapshot from the newest day's rows. The file is quoted
// against USD regardless of the requested base; base only labels the result.
// Satisfies the collector's SnapshotFetcher.
func (s *Store) Latest(_ context.Context, _ string) (model.RateSnapshot, error) {
	rows, err := s.readRows()
	if err != nil {
		return model.RateSnapshot{}, err
	}

	var latest time.Time
	for _, r := range rows {
		if r.date.After(latest) {
			latest = r.date
		}
	}
	rates := make(map[string]float64)
	for _, r := range rows {
		if r.date.Equal(latest) {
			rates[r.currency] = r.rate
		}
	}
	return model.RateSnapshot{Base: "USD", Rates: rates, UpdatedAt: latest, Source: s.Name()}, nil
}

// Historical returns per-currency ascending series covering the trailing
// `days` distinct dates in the file.
func (s *Store) Historical(days int) (map[string]model.RateSeries, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range rows {
		if !seen[r.date] {
			seen[r.date] = true
			dates = append(dates, r.date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}
	keep := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		keep[d] = true
	}

	byCurrency := make(map[string][]model.RatePoint)
	for _, r := range rows {
		if keep[r.date] {
			byCurrency[r.currency] = append(byCurrency[r.currency], model.RatePoint{Date: r.date, Rate: r.rate})
		}
	}

	out := make(map[string]model.RateSeries, len(byCurrency))
	for cur, points := range byCurrency {
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		out[cur] = model.RateSeries{Currency: cur, Quote: "USD", Source: s.Name(), Points: points}
	}
	return out, nil
}
