package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"RatePulse/internal/model"
)

// ScrapeFetcher recovers the TRM from an HTML page listing historical values
// in a table. Rows that fail to parse are skipped; scraping is lossy by
// nature and a partial series beats none.
type ScrapeFetcher struct {
	URL    string
	Client *http.Client
	Log    *logrus.Logger
}

// NewScrapeFetcher creates the web-scraping TRM fetcher.
func NewScrapeFetcher(url string, timeout time.Duration, log *logrus.Logger) *ScrapeFetcher {
	return &ScrapeFetcher{
		URL:    url,
		Client: newHTTPClient(timeout),
		Log:    log,
	}
}

func (f *ScrapeFetcher) Name() string { return "scrape" }

func (f *ScrapeFetcher) Fetch(ctx context.Context, start, end time.Time) (model.RateSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: scrape request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: scrape fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.RateSeries{}, fmt.Errorf("%w: scrape status %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return model.RateSeries{}, fmt.Errorf("%w: scrape parse: %v", ErrUnavailable, err)
	}
	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		return model.RateSeries{}, fmt.Errorf("%w: scrape: rate table not found", ErrUnavailable)
	}

	var points []model.RatePoint
	skipped := 0
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		d, err := time.Parse("02/01/2006", strings.TrimSpace(cols.Eq(0).Text()))
		if err != nil {
			skipped++
			return
		}
		rate, err := parseLocaleAmount(cols.Eq(1).Text())
		if err != nil || rate <= 0 {
			skipped++
			return
		}
		points = append(points, model.RatePoint{Date: d, Rate: rate})
	})
	if skipped > 0 {
		f.Log.Warnf("scrape: skipped %d unparsable rows", skipped)
	}

	points = clampSortDedup(points, start, end)
	if len(points) == 0 {
		return model.RateSeries{}, fmt.Errorf("%w: scrape", ErrNoData)
	}
	f.Log.Infof("scrape: %d rows in range", len(points))
	return model.RateSeries{Currency: "COP", Quote: "USD", Source: f.Name(), Points: points}, nil
}

// parseLocaleAmount normalizes a Colombian-format monetary string:
// "$4.123,45" -> 4123.45. The dot is the thousands separator and the comma
// the decimal separator.
func parseLocaleAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
