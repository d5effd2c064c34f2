package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"RatePulse/internal/model"
)

// erapiTimeLayout matches "Sat, 30 Aug 2025 00:02:31 +0000".
const erapiTimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// ERAPIFetcher pulls the current cross-rate snapshot from the open
// exchange-rate API. There is no fallback chain behind it: a failure here is
// surfaced to the caller.
type ERAPIFetcher struct {
	BaseURL string
	Client  *http.Client
	Log     *logrus.Logger
}

// NewERAPIFetcher creates the snapshot fetcher.
func NewERAPIFetcher(baseURL string, timeout time.Duration, log *logrus.Logger) *ERAPIFetcher {
	return &ERAPIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(timeout),
		Log:     log,
	}
}

func (f *ERAPIFetcher) Name() string { return "erapi" }

type erapiResponse struct {
	Result      string             `json:"result"`
	Rates       map[string]float64 `json:"rates"`
	LastUpdated string             `json:"time_last_update_utc"`
}

func (f *ERAPIFetcher) Latest(ctx context.Context, base string) (model.RateSnapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	u := f.BaseURL + "/" + url.PathEscape(base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi request: %v", ErrUnavailable, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi status %d", ErrUnavailable, resp.StatusCode)
	}

	var r erapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi decode: %v", ErrUnavailable, err)
	}
	if r.Result != "success" {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi result %q", ErrUnavailable, r.Result)
	}
	if len(r.Rates) == 0 {
		return model.RateSnapshot{}, fmt.Errorf("%w: erapi: empty rates", ErrNoData)
	}

	updated, err := time.Parse(erapiTimeLayout, r.LastUpdated)
	if err != nil {
		f.Log.Warnf("erapi: unparsable update time %q", r.LastUpdated)
		updated = time.Now().UTC()
	}
	r.Rates[base] = 1.0

	f.Log.Infof("erapi: %d rates for base %s", len(r.Rates), base)
	return model.RateSnapshot{Base: base, Rates: r.Rates, UpdatedAt: updated, Source: f.Name()}, nil
}
