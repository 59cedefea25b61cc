package planner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"ads-insights-go/internal/types"
)

// Analysis types, in match priority.
const (
	AnalysisDiagnostic   = "diagnostic"
	AnalysisOptimization = "optimization"
	AnalysisPredictive   = "predictive"
	AnalysisExploratory  = "exploratory"
)

const (
	objectiveDecline       = "Identify causes of performance decline"
	objectiveOptimize      = "Find optimization opportunities"
	objectiveROAS          = "Analyze ROAS trends and drivers"
	objectiveCTR           = "Analyze click-through rate performance"
	objectiveConversion    = "Analyze conversion funnel"
	objectiveCost          = "Analyze cost efficiency"
	objectiveComprehensive = "Perform comprehensive performance analysis"
)

type Options struct {
	DefaultWindowDays int
	DefaultSegments   []string
}

// Planner turns a free-text question into an analysis plan.
type Planner struct {
	opts Options
	now  func() time.Time
}

func New(opts Options) *Planner {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = 30
	}
	if len(opts.DefaultSegments) == 0 {
		opts.DefaultSegments = []string{"campaign_name", "creative_type"}
	}
	return &Planner{opts: opts, now: time.Now}
}

// Parse builds the plan. Windows end at anchor, normally the latest date in the data.
func (p *Planner) Parse(query string, anchor time.Time) types.Plan {
	q := strings.ToLower(query)
	now := p.now()

	objectives := extractObjectives(q)
	metrics := identifyMetrics(q, objectives)

	return types.Plan{
		PlanID:            fmt.Sprintf("PLAN_%s", now.Format("20060102_150405")),
		CreatedAt:         now,
		UserQuery:         query,
		Objectives:        objectives,
		MetricsToAnalyze:  metrics,
		TimeWindows:       Windows(anchor, p.windowDays(q)),
		Segments:          p.identifySegments(q),
		PriorityQuestions: priorityQuestions(metrics),
		AnalysisType:      classify(q),
	}
}

func containsAny(q string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func extractObjectives(q string) []string {
	var out []string
	if containsAny(q, "drop", "decline", "decrease", "down", "falling") {
		out = append(out, objectiveDecline)
	}
	if containsAny(q, "improve", "optimize", "increase", "boost") {
		out = append(out, objectiveOptimize)
	}
	if strings.Contains(q, "roas") {
		out = append(out, objectiveROAS)
	}
	if containsAny(q, "ctr", "click") {
		out = append(out, objectiveCTR)
	}
	if containsAny(q, "conversion", "convert") {
		out = append(out, objectiveConversion)
	}
	if containsAny(q, "spend", "cost") {
		out = append(out, objectiveCost)
	}
	if len(out) == 0 {
		out = append(out, objectiveComprehensive)
	}
	return out
}

var metricKeywords = []struct{ keyword, metric string }{
	{"roas", types.MetricROAS},
	{"ctr", types.MetricCTR},
	{"cpc", types.MetricCPC},
	{"cpm", types.MetricCPM},
	{"conversion", types.MetricConversionRate},
	{"impression", types.MetricImpressions},
	{"click", types.MetricClicks},
	{"spend", types.MetricSpend},
	{"revenue", types.MetricRevenue},
	{"purchase", types.MetricPurchases},
}

// identifyMetrics returns the sorted metric names implied by the query.
func identifyMetrics(q string, objectives []string) []string {
	set := map[string]bool{}
	for _, k := range metricKeywords {
		if strings.Contains(q, k.keyword) {
			set[k.metric] = true
		}
	}

	declining := false
	for _, o := range objectives {
		if o == objectiveDecline {
			declining = true
		}
	}
	if set[types.MetricROAS] || declining {
		addAll(set, types.MetricROAS, types.MetricSpend, types.MetricRevenue, types.MetricConversionRate)
	}
	if set[types.MetricCTR] {
		addAll(set, types.MetricImpressions, types.MetricClicks)
	}
	if strings.Contains(q, "cost") {
		addAll(set, types.MetricCPC, types.MetricCPM, types.MetricSpend)
	}
	if len(set) == 0 {
		addAll(set, types.MetricROAS, types.MetricCTR, types.MetricCPC, types.MetricSpend, types.MetricRevenue)
	}

	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func addAll(set map[string]bool, metrics ...string) {
	for _, m := range metrics {
		set[m] = true
	}
}

var windowPatterns = []struct {
	re   *regexp.Regexp
	days int
}{
	{regexp.MustCompile(`\b7\s*days?\b`), 7},
	{regexp.MustCompile(`\b14\s*days?\b`), 14},
	{regexp.MustCompile(`\b30\s*days?\b|\bmonth`), 30},
	{regexp.MustCompile(`\b60\s*days?\b`), 60},
	{regexp.MustCompile(`\b90\s*days?\b|\bquarter`), 90},
}

func (p *Planner) windowDays(q string) int {
	for _, w := range windowPatterns {
		if w.re.MatchString(q) {
			return w.days
		}
	}
	return p.opts.DefaultWindowDays
}

// Windows returns two adjacent windows of n days each. Comparison ends at
// anchor, baseline ends the day before comparison starts.
func Windows(anchor time.Time, n int) types.TimeWindows {
	if n < 1 {
		n = 1
	}
	end := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	compStart := end.AddDate(0, 0, -(n - 1))
	baseEnd := compStart.AddDate(0, 0, -1)
	baseStart := baseEnd.AddDate(0, 0, -(n - 1))

	return types.TimeWindows{
		Baseline: types.DateWindow{
			StartDate: baseStart.Format(types.DateLayout),
			EndDate:   baseEnd.Format(types.DateLayout),
			Label:     "Previous Period",
		},
		Comparison: types.DateWindow{
			StartDate: compStart.Format(types.DateLayout),
			EndDate:   end.Format(types.DateLayout),
			Label:     "Current Period",
		},
		ComparisonDays: n,
	}
}

var wordSplit = regexp.MustCompile(`[a-z0-9_]+`)

func (p *Planner) identifySegments(q string) []string {
	words := map[string]bool{}
	for _, w := range wordSplit.FindAllString(q, -1) {
		words[w] = true
	}

	var out []string
	if strings.Contains(q, "campaign") {
		out = append(out, "campaign_name")
	}
	// "ad" only as a whole word; as a substring it matches too much.
	if strings.Contains(q, "creative") || words["ad"] || words["ads"] {
		out = append(out, "creative_type")
	}
	if containsAny(q, "audience", "segment") {
		out = append(out, "audience_type")
	}
	if strings.Contains(q, "device") {
		out = append(out, "platform")
	}
	if containsAny(q, "country", "region", "geo") {
		out = append(out, "country")
	}
	if len(out) == 0 {
		out = append(out, p.opts.DefaultSegments...)
	}
	return out
}

func priorityQuestions(metrics []string) []string {
	has := map[string]bool{}
	for _, m := range metrics {
		has[m] = true
	}

	var out []string
	if has[types.MetricROAS] {
		out = append(out,
			"What is the primary driver of ROAS change?",
			"Which campaigns/creatives have the best/worst ROAS?")
	}
	if has[types.MetricCTR] {
		out = append(out, "Has CTR declined across all segments or specific ones?")
	}
	if has[types.MetricCPC] {
		out = append(out, "Are we experiencing cost inflation?")
	}
	if has[types.MetricSpend] && has[types.MetricRevenue] {
		out = append(out, "Is the issue spend-driven or revenue-driven?")
	}
	return append(out,
		"Are there any clear outliers or anomalies?",
		"What segments show the strongest performance?")
}

func classify(q string) string {
	switch {
	case containsAny(q, "drop", "decline", "problem", "issue"):
		return AnalysisDiagnostic
	case containsAny(q, "optimize", "improve", "increase"):
		return AnalysisOptimization
	case containsAny(q, "predict", "forecast"):
		return AnalysisPredictive
	default:
		return AnalysisExploratory
	}
}
