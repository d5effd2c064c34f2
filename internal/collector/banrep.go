package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"RatePulse/internal/model"
)

// BanRepFetcher pulls the TRM from the central-bank statistics endpoint,
// which accepts the date range directly as query parameters.
type BanRepFetcher struct {
	BaseURL string
	Client  *http.Client
	Log     *logrus.Logger
}

// NewBanRepFetcher creates the secondary TRM fetcher.
func NewBanRepFetcher(baseURL string, timeout time.Duration, log *logrus.Logger) *BanRepFetcher {
	return &BanRepFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(timeout),
		Log:     log,
	}
}

func (f *BanRepFetcher) Name() string { return "banrep" }

type banRepRecord struct {
	Date  string      `json:"date"`
	Value json.Number `json:"value"`
}

func (f *BanRepFetcher) Fetch(ctx context.Context, start, end time.Time) (model.RateSeries, error) {
	u := fmt.Sprintf("%s?from=%s&to=%s", f.BaseURL, start.Format(dateLayout), end.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: banrep request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: banrep fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.RateSeries{}, fmt.Errorf("%w: banrep status %d", ErrUnavailable, resp.StatusCode)
	}

	var records []banRepRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: banrep decode: %v", ErrUnavailable, err)
	}

	points := make([]model.RatePoint, 0, len(records))
	for _, r := range records {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return model.RateSeries{}, fmt.Errorf("%w: banrep date %q: %v", ErrUnavailable, r.Date, err)
		}
		rate, err := r.Value.Float64()
		if err != nil {
			return model.RateSeries{}, fmt.Errorf("%w: banrep value %q: %v", ErrUnavailable, r.Value, err)
		}
		if rate <= 0 {
			continue
		}
		points = append(points, model.RatePoint{Date: d, Rate: rate})
	}

	points = clampSortDedup(points, start, end)
	if len(points) == 0 {
		return model.RateSeries{}, fmt.Errorf("%w: banrep", ErrNoData)
	}
	f.Log.Infof("banrep: %d rows in range", len(points))
	return model.RateSeries{Currency: "COP", Quote: "USD", Source: f.Name(), Points: points}, nil
}
