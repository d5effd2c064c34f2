package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"RatePulse/internal/model"
)

// openDataMaxRecords is the row cap requested from the open-data API. The
// endpoint has no date filter, so we pull the newest rows and filter locally.
const openDataMaxRecords = 5000

// OpenDataFetcher pulls the TRM from the Datos Abiertos open-data API.
type OpenDataFetcher struct {
	BaseURL string
	Client  *http.Client
	Log     *logrus.Logger
}

// NewOpenDataFetcher creates the primary TRM fetcher.
func NewOpenDataFetcher(baseURL string, timeout time.Duration, log *logrus.Logger) *OpenDataFetcher {
	return &OpenDataFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(timeout),
		Log:     log,
	}
}

func (f *OpenDataFetcher) Name() string { return "opendata" }

// openDataRecord mirrors the API's row shape; values come back as strings.
type openDataRecord struct {
	Date  string `json:"vigenciadesde"`
	Value string `json:"valor"`
}

func (f *OpenDataFetcher) Fetch(ctx context.Context, start, end time.Time) (model.RateSeries, error) {
	u := fmt.Sprintf("%s?$limit=%d&$order=vigenciadesde%%20DESC", f.BaseURL, openDataMaxRecords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: opendata request: %v", ErrUnavailable, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: opendata fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.RateSeries{}, fmt.Errorf("%w: opendata status %d", ErrUnavailable, resp.StatusCode)
	}

	var records []openDataRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: opendata decode: %v", ErrUnavailable, err)
	}

	points := make([]model.RatePoint, 0, len(records))
	for _, r := range records {
		d, err := parseOpenDataDate(r.Date)
		if err != nil {
			return model.RateSeries{}, fmt.Errorf("%w: opendata date %q: %v", ErrUnavailable, r.Date, err)
		}
		rate, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return model.RateSeries{}, fmt.Errorf("%w: opendata value %q: %v", ErrUnavailable, r.Value, err)
		}
		if rate <= 0 {
			continue
		}
		points = append(points, model.RatePoint{Date: d, Rate: rate})
	}

	points = clampSortDedup(points, start, end)
	if len(points) == 0 {
		return model.RateSeries{}, fmt.Errorf("%w: opendata", ErrNoData)
	}
	f.Log.Infof("opendata: %d rows in range", len(points))
	return model.RateSeries{Currency: "COP", Quote: "USD", Source: f.Name(), Points: points}, nil
}

func parseOpenDataDate(s string) (time.Time, error) {
	layouts := []string{"2006-01-02T15:04:05.000", time.RFC3339, dateLayout}
	var lastErr error
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
