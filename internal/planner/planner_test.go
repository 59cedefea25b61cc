package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/types"
)

var anchor = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func fixedPlanner(opts Options) *Planner {
	p := New(opts)
	p.now = func() time.Time { return time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC) }
	return p
}

func TestParse_ROASDrop(t *testing.T) {
	plan := fixedPlanner(Options{}).Parse("Analyze ROAS drop in last 7 days", anchor)

	assert.Equal(t, "PLAN_20250401_093000", plan.PlanID)
	assert.Equal(t, []string{objectiveDecline, objectiveROAS}, plan.Objectives)
	assert.Equal(t, []string{"conversion_rate", "revenue", "roas", "spend"}, plan.MetricsToAnalyze)
	assert.Equal(t, AnalysisDiagnostic, plan.AnalysisType)
	assert.Equal(t, []string{"campaign_name", "creative_type"}, plan.Segments)
	assert.Equal(t, 7, plan.TimeWindows.ComparisonDays)
	assert.Equal(t, "2025-03-25", plan.TimeWindows.Comparison.StartDate)
	assert.Equal(t, "2025-03-31", plan.TimeWindows.Comparison.EndDate)
	assert.Equal(t, "2025-03-18", plan.TimeWindows.Baseline.StartDate)
	assert.Equal(t, "2025-03-24", plan.TimeWindows.Baseline.EndDate)
	assert.Contains(t, plan.PriorityQuestions, "What is the primary driver of ROAS change?")
	assert.Contains(t, plan.PriorityQuestions, "Is the issue spend-driven or revenue-driven?")
	require.NoError(t, plan.Validate())
}

func TestParse_WindowKeywords(t *testing.T) {
	cases := []struct {
		query string
		days  int
	}{
		{"ctr over the last 14 days", 14},
		{"performance this month", 30},
		{"spend in the past 60 days", 60},
		{"quarter review", 90},
		{"revenue trend over 17 days", 45},
		{"anything", 45},
	}
	p := fixedPlanner(Options{DefaultWindowDays: 45})
	for _, tc := range cases {
		plan := p.Parse(tc.query, anchor)
		assert.Equal(t, tc.days, plan.TimeWindows.ComparisonDays, tc.query)
		assert.NoError(t, plan.Validate(), tc.query)
	}
}

func TestWindows_AdjacentAndEqual(t *testing.T) {
	for _, n := range []int{1, 7, 30, 90} {
		w := Windows(anchor.Add(15*time.Hour), n)
		bs, be, err := w.Baseline.Bounds()
		require.NoError(t, err)
		cs, ce, err := w.Comparison.Bounds()
		require.NoError(t, err)

		assert.Equal(t, anchor, ce)
		assert.Equal(t, cs.AddDate(0, 0, -1), be, "baseline ends the day before comparison starts")
		assert.Equal(t, ce.Sub(cs), be.Sub(bs), "equal length")
		assert.Equal(t, n-1, int(ce.Sub(cs).Hours()/24))
		assert.NoError(t, types.Plan{TimeWindows: w}.Validate())
	}
}

func TestParse_Segments(t *testing.T) {
	p := fixedPlanner(Options{DefaultSegments: []string{"platform"}})

	assert.Equal(t, []string{"campaign_name", "creative_type", "audience_type"},
		p.Parse("compare campaign and ad results by audience", anchor).Segments)
	assert.Equal(t, []string{"platform", "country"},
		p.Parse("device split per region", anchor).Segments)
	assert.Equal(t, []string{"platform"},
		p.Parse("Analyze the spread of ROAS", anchor).Segments, "substring 'ad' does not match")
}

func TestParse_MetricsAndObjectives(t *testing.T) {
	p := fixedPlanner(Options{})

	plan := p.Parse("How can we improve CTR?", anchor)
	assert.Equal(t, []string{objectiveOptimize, objectiveCTR}, plan.Objectives)
	assert.Equal(t, []string{"clicks", "ctr", "impressions"}, plan.MetricsToAnalyze)
	assert.Equal(t, AnalysisOptimization, plan.AnalysisType)

	plan = p.Parse("cost analysis", anchor)
	assert.Equal(t, []string{objectiveCost}, plan.Objectives)
	assert.Equal(t, []string{"cpc", "cpm", "spend"}, plan.MetricsToAnalyze)
	assert.Contains(t, plan.PriorityQuestions, "Are we experiencing cost inflation?")

	plan = p.Parse("forecast next week", anchor)
	assert.Equal(t, []string{objectiveComprehensive}, plan.Objectives)
	assert.Equal(t, []string{"cpc", "ctr", "revenue", "roas", "spend"}, plan.MetricsToAnalyze)
	assert.Equal(t, AnalysisPredictive, plan.AnalysisType)

	plan = p.Parse("show me the numbers", anchor)
	assert.Equal(t, AnalysisExploratory, plan.AnalysisType)
	assert.Equal(t, []string{
		"What is the primary driver of ROAS change?",
		"Which campaigns/creatives have the best/worst ROAS?",
		"Has CTR declined across all segments or specific ones?",
		"Are we experiencing cost inflation?",
		"Is the issue spend-driven or revenue-driven?",
		"Are there any clear outliers or anomalies?",
		"What segments show the strongest performance?",
	}, plan.PriorityQuestions)
}
