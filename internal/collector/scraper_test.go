package collector

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestParseLocaleAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$4.123,45", 4123.45, false},
		{"4.000,00", 4000, false},
		{" $3.950,10 ", 3950.10, false},
		{"$950,25", 950.25, false},
		{"n/a", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLocaleAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
	}
}

const scrapePage = `<html><body>
<table class="table">
<tr><th>Fecha</th><th>TRM</th></tr>
<tr><td>04/01/2024</td><td>$3.950,10</td></tr>
<tr><td>03/01/2024</td><td>$3.920,00</td></tr>
<tr><td>not-a-date</td><td>$3.900,00</td></tr>
<tr><td>02/01/2024</td><td>no price</td></tr>
<tr><td>01/01/2024</td><td>$3.910,55</td></tr>
</table>
</body></html>`

func TestScrapeFetcher_ParsesTableSkippingBadRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, scrapePage)
	}))
	defer srv.Close()

	f := NewScrapeFetcher(srv.URL, time.Second, testLogger())
	series, err := f.Fetch(context.Background(), date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)

	require.Len(t, series.Points, 3)
	assert.Equal(t, "scrape", series.Source)
	assert.Equal(t, date("2024-01-01"), series.Points[0].Date)
	assert.InDelta(t, 3910.55, series.Points[0].Rate, 1e-9)
	assert.Equal(t, date("2024-01-04"), series.Points[2].Date)
	assert.InDelta(t, 3950.10, series.Points[2].Rate, 1e-9)
}

func TestScrapeFetcher_NoRowsInRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, scrapePage)
	}))
	defer srv.Close()

	f := NewScrapeFetcher(srv.URL, time.Second, testLogger())
	_, err := f.Fetch(context.Background(), date("2023-06-01"), date("2023-06-30"))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestScrapeFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewScrapeFetcher(srv.URL, time.Second, testLogger())
	_, err := f.Fetch(context.Background(), date("2024-01-01"), date("2024-01-31"))
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestScrapeFetcher_MissingTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>maintenance</p></body></html>")
	}))
	defer srv.Close()

	f := NewScrapeFetcher(srv.URL, time.Second, testLogger())
	_, err := f.Fetch(context.Background(), date("2024-01-01"), date("2024-01-31"))
	assert.True(t, errors.Is(err, ErrUnavailable))
}
