package insight

import (
	"fmt"
	"math"
	"sort"

	"ads-insights-go/internal/types"
)

// Rule thresholds, in percent change unless noted.
const (
	roasThreshold         = 10.0
	roasCriticalThreshold = 30.0
	efficiencySpendRise   = 10.0
	ctrThreshold          = 15.0
	cpcRiseThreshold      = 20.0
	conversionThreshold   = 10.0
	segmentROASGap        = 1.0 // absolute ROAS points

	fatigueCTRDrop        = -10.0
	saturationCPMRise     = 15.0
	competitionCPCRise    = 20.0
	landingPageConvDrop   = -15.0
	inverseCTRDrop        = -10.0
	inverseCPCRise        = 10.0
	efficiencyMinMovement = 5.0
)

// Input is what every rule sees.
type Input struct {
	Changes  types.ChangeSet
	Segments map[string]types.SegmentResult
	// ProductCategory is used in hypothesis wording only.
	ProductCategory string
}

// InsightRule emits zero or more insights.
type InsightRule struct {
	Name  string
	Apply func(Input) []types.Insight
}

// HypothesisRule emits at most one hypothesis.
type HypothesisRule struct {
	Name  string
	Apply func(Input) (types.Hypothesis, bool)
}

// CorrelationRule emits at most one correlation flag.
type CorrelationRule struct {
	Name  string
	Apply func(Input) (types.Correlation, bool)
}

// InsightRules are evaluated in this order; every rule runs regardless of the others.
var InsightRules = []InsightRule{
	{Name: "roas_change", Apply: roasRule},
	{Name: "spend_revenue_efficiency", Apply: efficiencyRule},
	{Name: "ctr_change", Apply: ctrRule},
	{Name: "cpc_increase", Apply: cpcRule},
	{Name: "conversion_rate_change", Apply: conversionRule},
	{Name: "segment_variance", Apply: segmentRule},
}

var HypothesisRules = []HypothesisRule{
	{Name: "creative_fatigue", Apply: creativeFatigue},
	{Name: "audience_saturation", Apply: audienceSaturation},
	{Name: "seasonality", Apply: seasonality},
	{Name: "competition", Apply: competition},
	{Name: "landing_page", Apply: landingPage},
}

var CorrelationRules = []CorrelationRule{
	{Name: "ctr_cpc_inverse", Apply: ctrCPCInverse},
	{Name: "spend_revenue_efficiency", Apply: spendRevenueEfficiency},
}

func pick(neg bool, ifNeg, ifPos string) string {
	if neg {
		return ifNeg
	}
	return ifPos
}

// ---- insights ----

func roasRule(in Input) []types.Insight {
	c, ok := in.Changes[types.MetricROAS]
	if !ok || math.Abs(c.PercentChange) <= roasThreshold {
		return nil
	}
	pct := c.PercentChange
	impact := types.ImpactModerate
	if math.Abs(pct) > roasCriticalThreshold {
		impact = types.ImpactCritical
	}
	verb := pick(pct < 0, "declined", "improved")
	return []types.Insight{{
		InsightID: "INS_ROAS_001",
		Type:      "performance_change",
		Title:     fmt.Sprintf("ROAS has %s by %.1f%%", verb, math.Abs(pct)),
		Description: fmt.Sprintf("Return on Ad Spend %s from %.2f to %.2f, representing a %.1f%% %sward movement.",
			verb, c.Baseline, c.Comparison, math.Abs(pct), c.Direction),
		Evidence: types.Evidence{
			"baseline_roas":   c.Baseline,
			"comparison_roas": c.Comparison,
			"change_pct":      pct,
		},
		Confidence: 0.95,
		Impact:     impact,
		Category:   "ROAS",
	}}
}

func efficiencyRule(in Input) []types.Insight {
	spend, ok1 := in.Changes.Percent(types.MetricSpend)
	revenue, ok2 := in.Changes.Percent(types.MetricRevenue)
	if !ok1 || !ok2 || spend <= efficiencySpendRise || revenue >= spend {
		return nil
	}
	return []types.Insight{{
		InsightID: "INS_EFF_001",
		Type:      "efficiency",
		Title:     "Spending increased faster than revenue",
		Description: fmt.Sprintf("Ad spend increased by %.1f%% while revenue only grew by %.1f%%, indicating declining efficiency.",
			spend, revenue),
		Evidence: types.Evidence{
			"spend_change":   spend,
			"revenue_change": revenue,
			"efficiency_gap": spend - revenue,
		},
		Confidence: 0.90,
		Impact:     types.ImpactModerate,
		Category:   "Efficiency",
	}}
}

func ctrRule(in Input) []types.Insight {
	c, ok := in.Changes[types.MetricCTR]
	if !ok || math.Abs(c.PercentChange) <= ctrThreshold {
		return nil
	}
	pct := c.PercentChange
	return []types.Insight{{
		InsightID: "INS_CTR_001",
		Type:      "engagement",
		Title:     fmt.Sprintf("Click-through rate %s significantly", pick(pct < 0, "declined", "improved")),
		Description: fmt.Sprintf("CTR changed from %.2f%% to %.2f%%, a %.1f%% change. This may indicate creative fatigue or improved ad relevance.",
			c.Baseline, c.Comparison, math.Abs(pct)),
		Evidence: types.Evidence{
			"baseline_ctr":   c.Baseline,
			"comparison_ctr": c.Comparison,
			"change_pct":     pct,
		},
		Confidence: 0.85,
		Impact:     types.ImpactModerate,
		Category:   "Engagement",
	}}
}

// only cost increases are reported
func cpcRule(in Input) []types.Insight {
	c, ok := in.Changes[types.MetricCPC]
	if !ok || c.PercentChange <= cpcRiseThreshold {
		return nil
	}
	return []types.Insight{{
		InsightID: "INS_CPC_001",
		Type:      "cost",
		Title:     "Cost per click has increased significantly",
		Description: fmt.Sprintf("CPC rose from $%.2f to $%.2f, a %.1f%% increase. This could indicate increased competition or reduced ad quality.",
			c.Baseline, c.Comparison, c.PercentChange),
		Evidence: types.Evidence{
			"baseline_cpc":   c.Baseline,
			"comparison_cpc": c.Comparison,
			"change_pct":     c.PercentChange,
		},
		Confidence: 0.88,
		Impact:     types.ImpactModerate,
		Category:   "Cost",
	}}
}

func conversionRule(in Input) []types.Insight {
	c, ok := in.Changes[types.MetricConversionRate]
	if !ok || math.Abs(c.PercentChange) <= conversionThreshold {
		return nil
	}
	return []types.Insight{{
		InsightID: "INS_CONV_001",
		Type:      "conversion",
		Title:     fmt.Sprintf("Conversion rate %s", pick(c.PercentChange < 0, "dropped", "increased")),
		Description: fmt.Sprintf("Conversion rate moved from %.2f%% to %.2f%%. This may be related to landing page performance or audience quality.",
			c.Baseline, c.Comparison),
		Evidence: types.Evidence{
			"baseline_conv":   c.Baseline,
			"comparison_conv": c.Comparison,
			"change_pct":      c.PercentChange,
		},
		Confidence: 0.82,
		Impact:     types.ImpactModerate,
		Category:   "Conversion",
	}}
}

func segmentRule(in Input) []types.Insight {
	dims := make([]string, 0, len(in.Segments))
	for d := range in.Segments {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	var out []types.Insight
	for _, dim := range dims {
		seg := in.Segments[dim]
		if len(seg.Top) == 0 || len(seg.Bottom) == 0 {
			continue
		}
		top, bottom := seg.Top[0], seg.Bottom[0]
		gap := top.ROAS - bottom.ROAS
		if gap <= segmentROASGap {
			continue
		}
		out = append(out, types.Insight{
			InsightID: fmt.Sprintf("INS_SEG_%s_001", dim),
			Type:      "segment_variance",
			Title:     fmt.Sprintf("Wide ROAS variance across %s", dim),
			Description: fmt.Sprintf("Top performing %s ('%s') has ROAS of %.2f, while lowest ('%s') has %.2f. Consider reallocating budget to top performers.",
				dim, top.Value, top.ROAS, bottom.Value, bottom.ROAS),
			Evidence: types.Evidence{
				"segment":          dim,
				"top_performer":    top.Value,
				"top_roas":         top.ROAS,
				"bottom_performer": bottom.Value,
				"bottom_roas":      bottom.ROAS,
				"roas_gap":         gap,
			},
			Confidence: 0.80,
			Impact:     types.ImpactModerate,
			Category:   "Segmentation",
		})
	}
	return out
}

// ---- hypotheses ----

func creativeFatigue(in Input) (types.Hypothesis, bool) {
	pct, ok := in.Changes.Percent(types.MetricCTR)
	if !ok || pct >= fatigueCTRDrop {
		return types.Hypothesis{}, false
	}
	return types.Hypothesis{
		HypothesisID: "HYP_001",
		Statement:    "Creative fatigue is contributing to declining CTR",
		Reasoning:    "Significant CTR decline suggests audiences are becoming less responsive to current creative assets",
		SupportingEvidence: []string{
			fmt.Sprintf("CTR declined by %.1f%%", math.Abs(pct)),
			"Extended exposure to same creative reduces engagement",
		},
		Confidence:      0.75,
		Testable:        true,
		RecommendedTest: "Rotate new creative variants and measure CTR improvement",
	}, true
}

func audienceSaturation(in Input) (types.Hypothesis, bool) {
	pct, ok := in.Changes.Percent(types.MetricCPM)
	if !ok || pct <= saturationCPMRise {
		return types.Hypothesis{}, false
	}
	return types.Hypothesis{
		HypothesisID: "HYP_002",
		Statement:    "Audience saturation is driving up costs",
		Reasoning:    "Rising CPM suggests increased frequency and reduced available inventory within target audiences",
		SupportingEvidence: []string{
			fmt.Sprintf("CPM increased by %.1f%%", pct),
			"Higher frequency typically correlates with audience saturation",
		},
		Confidence:      0.70,
		Testable:        true,
		RecommendedTest: "Expand to lookalike audiences and measure cost efficiency",
	}, true
}

func seasonality(in Input) (types.Hypothesis, bool) {
	category := in.ProductCategory
	if category == "" {
		category = "retail"
	}
	return types.Hypothesis{
		HypothesisID: "HYP_003",
		Statement:    "Seasonal factors may be influencing performance",
		Reasoning:    fmt.Sprintf("Purchases in the %s category often show seasonal patterns based on fashion trends and holidays", category),
		SupportingEvidence: []string{
			"E-commerce typically shows seasonal variance",
			"Consumer behavior shifts with seasons",
		},
		Confidence:      0.60,
		Testable:        true,
		RecommendedTest: "Compare with same period last year",
	}, true
}

func competition(in Input) (types.Hypothesis, bool) {
	pct, ok := in.Changes.Percent(types.MetricCPC)
	if !ok || pct <= competitionCPCRise {
		return types.Hypothesis{}, false
	}
	return types.Hypothesis{
		HypothesisID: "HYP_004",
		Statement:    "Increased competition is driving up acquisition costs",
		Reasoning:    "Significant CPC increases often indicate more advertisers competing for same audience",
		SupportingEvidence: []string{
			fmt.Sprintf("CPC increased by %.1f%%", pct),
			"Market competition affects auction dynamics",
		},
		Confidence:      0.65,
		Testable:        false,
		RecommendedTest: "Monitor competitor activity and adjust bidding strategy",
	}, true
}

func landingPage(in Input) (types.Hypothesis, bool) {
	pct, ok := in.Changes.Percent(types.MetricConversionRate)
	if !ok || pct >= landingPageConvDrop {
		return types.Hypothesis{}, false
	}
	return types.Hypothesis{
		HypothesisID: "HYP_005",
		Statement:    "Landing page experience is negatively impacting conversions",
		Reasoning:    "Significant conversion rate decline despite maintained traffic suggests post-click issues",
		SupportingEvidence: []string{
			fmt.Sprintf("Conversion rate dropped by %.1f%%", math.Abs(pct)),
			"Click volume maintained but conversions declined",
		},
		Confidence:      0.72,
		Testable:        true,
		RecommendedTest: "Conduct landing page A/B test with simplified checkout",
	}, true
}

// ---- correlations ----

func ctrCPCInverse(in Input) (types.Correlation, bool) {
	ctr, ok1 := in.Changes.Percent(types.MetricCTR)
	cpc, ok2 := in.Changes.Percent(types.MetricCPC)
	if !ok1 || !ok2 || ctr >= inverseCTRDrop || cpc <= inverseCPCRise {
		return types.Correlation{}, false
	}
	return types.Correlation{
		CorrelationID: "CORR_001",
		Metrics:       []string{types.MetricCTR, types.MetricCPC},
		Relationship:  "inverse",
		Description:   "Declining CTR is correlated with rising CPC, suggesting reduced ad relevance",
		Strength:      0.75,
	}, true
}

func spendRevenueEfficiency(in Input) (types.Correlation, bool) {
	spend, ok1 := in.Changes.Percent(types.MetricSpend)
	revenue, ok2 := in.Changes.Percent(types.MetricRevenue)
	if !ok1 || !ok2 || math.Abs(spend) <= efficiencyMinMovement || math.Abs(revenue) <= efficiencyMinMovement {
		return types.Correlation{}, false
	}
	ratio := 0.0
	if spend != 0 {
		ratio = revenue / spend
	}
	return types.Correlation{
		CorrelationID: "CORR_002",
		Metrics:       []string{types.MetricSpend, types.MetricRevenue},
		Relationship:  "direct",
		Description:   fmt.Sprintf("Spend-to-revenue efficiency ratio: %.2f", ratio),
		Strength:      0.80,
		Ratio:         &ratio,
	}, true
}
