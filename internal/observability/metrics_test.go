package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Exposed(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("success")
	m.RecordRun("success")
	m.ObserveStage("insight", 20*time.Millisecond)
	m.RecordEvaluation(3, 1, 2, 0)
	m.SetRowsLoaded(120)

	out := scrape(t, m)
	assert.Contains(t, out, `ads_insights_pipeline_runs_total{status="success"} 2`)
	assert.Contains(t, out, `ads_insights_pipeline_stage_duration_seconds_count{stage="insight"} 1`)
	assert.Contains(t, out, `ads_insights_evaluator_insights_total{outcome="validated"} 3`)
	assert.Contains(t, out, `ads_insights_evaluator_insights_total{outcome="rejected"} 1`)
	assert.Contains(t, out, `ads_insights_evaluator_hypotheses_total{outcome="validated"} 2`)
	assert.Contains(t, out, "ads_insights_dataset_rows_loaded 120")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordRun("failed")
	assert.NotContains(t, scrape(t, b), `status="failed"`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRun("success")
		m.ObserveStage("planner", time.Second)
		m.RecordEvaluation(1, 1, 1, 1)
		m.SetRowsLoaded(1)
	})
}
