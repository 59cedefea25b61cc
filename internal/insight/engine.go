package insight

import (
	"time"

	"ads-insights-go/internal/types"
)

const highConfidenceHypothesis = 0.7

// Engine applies the rule registries to a change set and segment results.
type Engine struct {
	ProductCategory string
	now             func() time.Time
}

func NewEngine(productCategory string) *Engine {
	return &Engine{ProductCategory: productCategory, now: time.Now}
}

// Derive runs every insight, hypothesis and correlation rule once, in registry order.
func (e *Engine) Derive(changes types.ChangeSet, segments map[string]types.SegmentResult) types.InsightResult {
	in := Input{Changes: changes, Segments: segments, ProductCategory: e.ProductCategory}

	insights := []types.Insight{}
	for _, r := range InsightRules {
		insights = append(insights, r.Apply(in)...)
	}
	hypotheses := []types.Hypothesis{}
	for _, r := range HypothesisRules {
		if h, ok := r.Apply(in); ok {
			hypotheses = append(hypotheses, h)
		}
	}
	correlations := []types.Correlation{}
	for _, r := range CorrelationRules {
		if c, ok := r.Apply(in); ok {
			correlations = append(correlations, c)
		}
	}

	return types.InsightResult{
		GeneratedAt:  e.now(),
		Insights:     insights,
		Hypotheses:   hypotheses,
		Correlations: correlations,
		Summary:      Summarize(insights, hypotheses),
	}
}

// Summarize counts insights by impact and lists the first three titles.
func Summarize(insights []types.Insight, hypotheses []types.Hypothesis) types.InsightSummary {
	s := types.InsightSummary{
		TotalInsights:   len(insights),
		TotalHypotheses: len(hypotheses),
		KeyFindings:     []string{},
	}
	for i, in := range insights {
		switch in.Impact {
		case types.ImpactCritical:
			s.CriticalInsights++
		case types.ImpactModerate:
			s.ModerateInsights++
		}
		if i < 3 {
			s.KeyFindings = append(s.KeyFindings, in.Title)
		}
	}
	for _, h := range hypotheses {
		if h.Confidence > highConfidenceHypothesis {
			s.HighConfidenceHypotheses++
		}
	}
	return s
}
