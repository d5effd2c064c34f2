package server

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"RatePulse/internal/analytics"
	"RatePulse/internal/collector"
	"RatePulse/internal/model"
	"RatePulse/internal/store"
)

const (
	dateLayout  = "2006-01-02"
	defaultDays = 30
	maxRangeYrs = 5
)

// parseRange reads start/end query params, defaulting to the trailing 30
// days and clamping both ends into [now-5y, now].
func parseRange(c *gin.Context) (start, end time.Time, err error) {
	now := time.Now().Truncate(24 * time.Hour)
	min := now.AddDate(-maxRangeYrs, 0, 0)

	end = now
	if v := c.Query("end"); v != "" {
		end, err = time.Parse(dateLayout, v)
		if err != nil {
			return
		}
	}
	start = end.AddDate(0, 0, -defaultDays)
	if v := c.Query("start"); v != "" {
		start, err = time.Parse(dateLayout, v)
		if err != nil {
			return
		}
	}

	if start.Before(min) {
		start = min
	}
	if end.After(now) {
		end = now
	}
	return
}

func (s *Server) handleTRM(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start after end"})
		return
	}

	series, err := s.resolveCached(c.Request.Context(), start, end)
	if err != nil {
		s.log.Errorf("resolve trm: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "no data available for range"})
		return
	}
	summary, err := analytics.Summarize(series)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "no data available for range"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series, "summary": summary})
}

func (s *Server) handleTRMWeekly(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil || start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	series, err := s.resolveCached(c.Request.Context(), start, end)
	if err != nil {
		s.log.Errorf("resolve trm: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "no data available for range"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": series.Source, "bars": analytics.WeeklyOHLC(series)})
}

func (s *Server) handleTRMExport(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil || start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	series, err := s.resolveCached(c.Request.Context(), start, end)
	if err != nil {
		s.log.Errorf("resolve trm: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "no data available for range"})
		return
	}
	path, err := store.SaveSeries(series, filepath.Join(s.opts.DataDir, "trm_data.csv"))
	if err != nil {
		s.log.Errorf("export trm: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "rows": len(series.Points)})
}

func (s *Server) handleRates(c *gin.Context) {
	base := strings.ToUpper(c.DefaultQuery("base", s.opts.Base))
	snap, err := s.snapshotCached(c.Request.Context(), base)
	if err != nil {
		s.log.Errorf("fetch rates: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch current rates"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleHistory(c *gin.Context) {
	days := defaultDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}
	currencies := collector.DefaultHistoryCurrencies
	if v := c.Query("currencies"); v != "" {
		currencies = nil
		for _, cur := range strings.Split(v, ",") {
			if cur = strings.ToUpper(strings.TrimSpace(cur)); cur != "" {
				currencies = append(currencies, cur)
			}
		}
	}

	hist, err := s.historyCached(c.Request.Context(), s.opts.Base, days, currencies)
	if err != nil {
		s.log.Errorf("fetch history: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch historical rates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"base": s.opts.Base, "days": days, "series": hist})
}

func (s *Server) handleConvert(c *gin.Context) {
	amount := 100.0
	if v := c.Query("amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
			return
		}
		amount = f
	}
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'from' and 'to'"})
		return
	}

	snap, err := s.snapshotCached(c.Request.Context(), s.opts.Base)
	if err != nil {
		s.log.Errorf("fetch rates: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch current rates"})
		return
	}
	result, err := analytics.Convert(amount, from, to, snap)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"amount": amount,
		"from":   from,
		"to":     to,
		"result": result,
		"rate":   result / amount,
	}
	if trend, err := s.crossTrend(c, from, to); err == nil && !trend.Empty() {
		resp["trend"] = trend
	}
	c.JSON(http.StatusOK, resp)
}

// crossTrend builds the recent from→to rate series from the historical data.
// Best effort: a missing currency just drops the trend from the response.
func (s *Server) crossTrend(c *gin.Context, from, to string) (model.RateSeries, error) {
	var want []string
	if from != s.opts.Base {
		want = append(want, from)
	}
	if to != s.opts.Base {
		want = append(want, to)
	}
	if len(want) == 0 {
		return model.RateSeries{}, nil
	}

	hist, err := s.historyCached(c.Request.Context(), s.opts.Base, defaultDays, want)
	if err != nil {
		return model.RateSeries{}, err
	}
	fromSeries, toSeries := hist[from], hist[to]
	if from == s.opts.Base {
		fromSeries = toSeries
	}
	if to == s.opts.Base {
		toSeries = fromSeries
	}
	if fromSeries.Empty() || toSeries.Empty() {
		return model.RateSeries{}, nil
	}
	return analytics.CrossSeries(from, to, fromSeries, toSeries)
}

func (s *Server) handleSample(c *gin.Context) {
	days := defaultDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}
	path, err := s.store.WriteSample(days)
	if err != nil {
		s.log.Errorf("write sample: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate sample data"})
		return
	}
	s.cache.Purge() // stale csv-backed entries would outlive the rewrite
	c.JSON(http.StatusOK, gin.H{"path": path, "days": days})
}
