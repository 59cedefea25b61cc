package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/types"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		ExecutionID:          "EXEC_test",
		Query:                "Analyze ROAS drop",
		ExecutionTimeSeconds: 0.123456,
		Timestamp:            time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
		Plan: types.Plan{
			Objectives:   []string{"Identify causes of performance decline"},
			AnalysisType: "diagnostic",
			TimeWindows: types.TimeWindows{
				Baseline:   types.DateWindow{StartDate: "2025-03-01", EndDate: "2025-03-07"},
				Comparison: types.DateWindow{StartDate: "2025-03-08", EndDate: "2025-03-14"},
			},
		},
		Data: types.DataResult{
			Summary:           types.DataSummary{TotalRows: 28, BaselineRows: 14, ComparisonRows: 14},
			BaselineMetrics:   types.MetricVector{Rows: 14, Spend: 1400, Revenue: 5600, ROAS: 4},
			ComparisonMetrics: types.MetricVector{Rows: 14, Spend: 1400, Revenue: 3360, ROAS: 2.4},
			MetricChanges: types.ChangeSet{
				types.MetricROAS: {Baseline: 4, Comparison: 2.4, AbsoluteChange: -1.6, PercentChange: -40, Direction: types.DirectionDown},
			},
			Segments: map[string]types.SegmentResult{
				"campaign_name": {
					Dimension: "campaign_name", Groups: 2,
					Top:    []types.SegmentGroup{{Value: "Alpha", ROAS: 3.1}},
					Bottom: []types.SegmentGroup{{Value: "Bravo", ROAS: 1.7}},
				},
			},
		},
		Insights: []types.ValidatedInsight{{
			Insight: types.Insight{
				InsightID: "INS_ROAS_001", Title: "ROAS has declined by 40.0%", Category: "ROAS",
				Impact: types.ImpactCritical, Confidence: 0.95,
				Evidence: types.Evidence{"change_pct": -40.0, "baseline_roas": 4.0, "comparison_roas": 2.4},
			},
			ValidationScore:    0.97251,
			ConfidenceAdjusted: 0.923884,
			Ranking:            1,
		}},
		Hypotheses: []types.ValidatedHypothesis{{
			Hypothesis:         types.Hypothesis{HypothesisID: "HYP_003", Statement: "Seasonal factors may be influencing performance", Confidence: 0.6, Testable: true},
			ConfidenceAdjusted: 0.74,
			Ranking:            1,
		}},
		Creatives:        []types.Creative{{CreativeID: "CRE_BASE_001", Headline: "Comfort That Lasts All Day"}},
		ABTests:          []types.ABTest{{TestID: "AB_TEST_001", TestName: "Creative Refresh Impact", DurationDays: 7}},
		CreativeStrategy: "\n# Creative Strategy Recommendations\n",
		ExecutionLog:     []types.ExecutionLogEntry{{Agent: "planner", Status: "success"}},
	}
}

func TestWrite_AllFiles(t *testing.T) {
	dir := t.TempDir()
	out, logs := filepath.Join(dir, "reports"), filepath.Join(dir, "logs")

	paths, err := Write(out, logs, sampleResult())
	require.NoError(t, err)

	for _, p := range []string{paths.Insights, paths.Creatives, paths.Markdown, paths.ExecutionLog} {
		assert.FileExists(t, p)
	}
	assert.Equal(t, filepath.Join(logs, "execution_log.json"), paths.ExecutionLog)

	raw, err := os.ReadFile(paths.Insights)
	require.NoError(t, err)
	var ins map[string]any
	require.NoError(t, json.Unmarshal(raw, &ins))
	first := ins["insights"].([]any)[0].(map[string]any)
	assert.Equal(t, 0.97, first["validation_score"])
	assert.Equal(t, 0.92, first["confidence_adjusted"])
	assert.Equal(t, "INS_ROAS_001", first["insight_id"])
	assert.Equal(t, 0.12, ins["summary"].(map[string]any)["execution_time"])

	raw, err = os.ReadFile(paths.ExecutionLog)
	require.NoError(t, err)
	var el map[string]any
	require.NoError(t, json.Unmarshal(raw, &el))
	assert.Equal(t, "EXEC_test", el["execution_id"])
	assert.Len(t, el["log"], 1)
}

func TestWrite_DoesNotMutateResult(t *testing.T) {
	r := sampleResult()
	_, err := Write(t.TempDir(), t.TempDir(), r)
	require.NoError(t, err)
	assert.Equal(t, 0.97251, r.Insights[0].ValidationScore)
	assert.Equal(t, -40.0, r.Insights[0].Evidence["change_pct"])
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleResult())

	assert.Contains(t, md, "# Ad Performance Analysis Report")
	assert.Contains(t, md, "**Query:** Analyze ROAS drop")
	assert.Contains(t, md, "1. **ROAS has declined by 40.0%** (Confidence: 95%)")
	assert.Contains(t, md, "| roas | 4.00 | 2.40 | -40.00% | down |")
	assert.Contains(t, md, "| campaign_name | Alpha | 3.10 | Bravo | 1.70 |")
	assert.Contains(t, md, "**Validation Score:** 0.97 (rank 1)")
	assert.Contains(t, md, "- change_pct: -40.00")
	assert.Contains(t, md, "### Hypothesis 1: Seasonal factors may be influencing performance")
	assert.Contains(t, md, "**Duration:** 7 days")
	assert.Contains(t, md, "# Creative Strategy Recommendations")
	assert.Contains(t, md, "| Insights | 0 | 0 | 0 | 0.0% | 0.00 |")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&types.AnalysisResult{Query: "q"})
	assert.Contains(t, md, "No insights passed validation.")
	assert.Contains(t, md, "Not enough data in both periods to compare metrics.")
	assert.Contains(t, md, "**Data Range:** N/A to N/A")
	assert.Contains(t, md, "No strategy provided.")
}
