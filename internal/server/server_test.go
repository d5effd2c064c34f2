package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatePulse/internal/cache"
	"RatePulse/internal/model"
	"RatePulse/internal/store"
)

type stubResolver struct {
	series model.RateSeries
	err    error
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, _, _ time.Time) (model.RateSeries, error) {
	s.calls++
	return s.series, s.err
}

type stubSnapshot struct {
	snap model.RateSnapshot
	err  error
}

func (s *stubSnapshot) Name() string { return "stub" }

func (s *stubSnapshot) Latest(_ context.Context, _ string) (model.RateSnapshot, error) {
	return s.snap, s.err
}

func testSeries() model.RateSeries {
	start, _ := time.Parse("2006-01-02", "2024-01-01")
	s := model.RateSeries{Currency: "COP", Quote: "USD", Source: "opendata"}
	for i, r := range []float64{100, 110, 90} {
		s.Points = append(s.Points, model.RatePoint{Date: start.AddDate(0, 0, i), Rate: r})
	}
	return s
}

func testServer(t *testing.T, resolver Resolver, snapshot *stubSnapshot) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	st := store.New(filepath.Join(t.TempDir(), "exchange_rates.csv"), 1)
	return New(log, cache.New(time.Hour), resolver, snapshot, st, Options{
		DataDir: t.TempDir(),
		Base:    "USD",
		Seed:    1,
	})
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleTRM(t *testing.T) {
	resolver := &stubResolver{series: testSeries()}
	srv := testServer(t, resolver, &stubSnapshot{})

	w := doRequest(srv, http.MethodGet, "/api/v1/trm?start=2024-01-01&end=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Series  model.RateSeries `json:"series"`
		Summary model.Summary    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "opendata", resp.Series.Source)
	assert.Equal(t, 90.0, resp.Summary.Latest)
	assert.Equal(t, -20.0, resp.Summary.Delta)
}

func TestHandleTRM_CachedAcrossRequests(t *testing.T) {
	resolver := &stubResolver{series: testSeries()}
	srv := testServer(t, resolver, &stubSnapshot{})

	doRequest(srv, http.MethodGet, "/api/v1/trm?start=2024-01-01&end=2024-01-31")
	doRequest(srv, http.MethodGet, "/api/v1/trm?start=2024-01-01&end=2024-01-31")
	assert.Equal(t, 1, resolver.calls, "second request must hit the cache")
}

func TestHandleTRM_BadDates(t *testing.T) {
	srv := testServer(t, &stubResolver{series: testSeries()}, &stubSnapshot{})

	w := doRequest(srv, http.MethodGet, "/api/v1/trm?start=01-02-2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/trm?start=2024-03-01&end=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTRMWeekly(t *testing.T) {
	srv := testServer(t, &stubResolver{series: testSeries()}, &stubSnapshot{})

	w := doRequest(srv, http.MethodGet, "/api/v1/trm/weekly?start=2024-01-01&end=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Source string          `json:"source"`
		Bars   []model.OhlcBar `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "opendata", resp.Source)
	require.Len(t, resp.Bars, 1)
	assert.Equal(t, 100.0, resp.Bars[0].Open)
	assert.Equal(t, 90.0, resp.Bars[0].Close)
}

func TestHandleRates(t *testing.T) {
	snap := model.RateSnapshot{
		Base:      "USD",
		Rates:     map[string]float64{"USD": 1, "EUR": 0.85},
		UpdatedAt: time.Now().UTC(),
		Source:    "erapi",
	}
	srv := testServer(t, &stubResolver{}, &stubSnapshot{snap: snap})

	w := doRequest(srv, http.MethodGet, "/api/v1/rates")
	require.Equal(t, http.StatusOK, w.Code)

	var got model.RateSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "USD", got.Base)
	assert.InDelta(t, 0.85, got.Rates["EUR"], 1e-9)
}

func TestHandleRates_UpstreamFailure(t *testing.T) {
	srv := testServer(t, &stubResolver{}, &stubSnapshot{err: assert.AnError})

	w := doRequest(srv, http.MethodGet, "/api/v1/rates")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleConvert(t *testing.T) {
	snap := model.RateSnapshot{
		Base:  "USD",
		Rates: map[string]float64{"USD": 1, "EUR": 0.85, "GBP": 0.75},
	}
	srv := testServer(t, &stubResolver{}, &stubSnapshot{snap: snap})

	w := doRequest(srv, http.MethodGet, "/api/v1/convert?amount=100&from=EUR&to=GBP")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result float64 `json:"result"`
		Rate   float64 `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 100/0.85*0.75, resp.Result, 1e-9)
	assert.InDelta(t, 0.75/0.85, resp.Rate, 1e-9)
}

func TestHandleConvert_MissingParams(t *testing.T) {
	srv := testServer(t, &stubResolver{}, &stubSnapshot{})
	w := doRequest(srv, http.MethodGet, "/api/v1/convert?amount=100&from=EUR")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistory(t *testing.T) {
	snap := model.RateSnapshot{
		Base:  "USD",
		Rates: map[string]float64{"USD": 1, "EUR": 0.85, "GBP": 0.75},
	}
	srv := testServer(t, &stubResolver{}, &stubSnapshot{snap: snap})

	w := doRequest(srv, http.MethodGet, "/api/v1/rates/history?days=10&currencies=EUR,GBP")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days   int                         `json:"days"`
		Series map[string]model.RateSeries `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Days)
	require.Contains(t, resp.Series, "EUR")
	assert.Len(t, resp.Series["EUR"].Points, 10)
}

func TestHandleSample(t *testing.T) {
	srv := testServer(t, &stubResolver{}, &stubSnapshot{})

	w := doRequest(srv, http.MethodPost, "/api/v1/sample?days=5")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.FileExists(t, resp.Path)
}

func TestHandleExport(t *testing.T) {
	srv := testServer(t, &stubResolver{series: testSeries()}, &stubSnapshot{})

	w := doRequest(srv, http.MethodPost, "/api/v1/trm/export?start=2024-01-01&end=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Path string `json:"path"`
		Rows int    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.FileExists(t, resp.Path)
	assert.Equal(t, 3, resp.Rows)
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, &stubResolver{}, &stubSnapshot{})
	w := doRequest(srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
