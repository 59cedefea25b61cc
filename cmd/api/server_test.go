package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/config"
	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/observability"
	"ads-insights-go/internal/pipeline"
	"ads-insights-go/internal/processor"
	"ads-insights-go/internal/types"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()
	table := &dataset.Table{Dimensions: []string{"campaign_name"}}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		table.Rows = append(table.Rows, types.Row{
			Date: start.AddDate(0, 0, i), Spend: 50, Impressions: 5000, Clicks: 100, Purchases: 5, Revenue: 150,
			Dimensions: map[string]string{"campaign_name": "Alpha"},
		})
	}
	m := observability.NewMetrics()
	o, err := pipeline.New(config.Default(), pipeline.WithLogger(logger.Discard()), pipeline.WithMetrics(m))
	require.NoError(t, err)
	s := &server{
		proc:    &processor.Processor{Orchestrator: o, Table: table, Log: logger.Discard()},
		table:   table,
		metrics: m,
	}
	return s.routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	h := testServer(t)

	rec := get(t, h, "/analyze")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/analyze?query=last+7+days")
	require.Equal(t, http.StatusOK, rec.Code)
	var res processor.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "last 7 days", res.Query)
	assert.Equal(t, 7, res.Analysis.Data.Summary.ComparisonRows)

	rec = get(t, h, "/metrics")
	assert.Contains(t, rec.Body.String(), `ads_insights_pipeline_runs_total{status="success"} 1`)
}

func TestSummary(t *testing.T) {
	rec := get(t, testServer(t), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 14, body.Summary.TotalRows)
	assert.Equal(t, "2025-06-01", body.Summary.DateRange.Min)
	assert.Equal(t, []string{"campaign_name"}, body.Dimensions)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&types.InvalidRangeError{}))
	assert.Equal(t, http.StatusBadRequest, statusFor(types.ErrOverlappingWindows))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(dataset.ErrLoad))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
