package evaluator

import (
	"math"

	"ads-insights-go/internal/types"
)

// BuildQualityReport summarises approval counts and average scores.
// Empty inputs give zero rates and averages.
func BuildQualityReport(all []types.ValidatedInsight, allHyps []types.ValidatedHypothesis,
	approved []types.ValidatedInsight, approvedHyps []types.ValidatedHypothesis) types.QualityReport {

	var r types.QualityReport

	r.Insights = types.CategoryQuality{
		TotalSubmitted: len(all),
		Approved:       len(approved),
		Rejected:       len(all) - len(approved),
	}
	if len(all) > 0 {
		sum := 0.0
		for _, in := range all {
			sum += in.ValidationScore
		}
		r.Insights.ApprovalRate = round(float64(len(approved))/float64(len(all))*100, 1)
		r.Insights.AverageScore = round(sum/float64(len(all)), 2)
	}

	r.Hypotheses = types.CategoryQuality{
		TotalSubmitted: len(allHyps),
		Approved:       len(approvedHyps),
		Rejected:       len(allHyps) - len(approvedHyps),
	}
	if len(allHyps) > 0 {
		sum := 0.0
		for _, h := range allHyps {
			sum += h.ConfidenceAdjusted
		}
		r.Hypotheses.ApprovalRate = round(float64(len(approvedHyps))/float64(len(allHyps))*100, 1)
		r.Hypotheses.AverageScore = round(sum/float64(len(allHyps)), 2)
	}

	for _, in := range approved {
		if in.ValidationScore > 0.8 {
			r.QualityMetrics.HighConfidenceInsights++
		}
		if in.StatisticalSignificance {
			r.QualityMetrics.StatisticallySignificant++
		}
	}
	for _, h := range approvedHyps {
		if h.Testable {
			r.QualityMetrics.ActionableHypotheses++
		}
	}
	return r
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
