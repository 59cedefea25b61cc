package evaluator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"ads-insights-go/internal/types"
)

var ErrInvalidThreshold = errors.New("threshold must be within [0,1]")

// Insight score weights.
const (
	weightConfidence   = 0.30
	weightEvidence     = 0.30
	weightSignificance = 0.25
	weightRelevance    = 0.15
)

// Hypothesis score weights.
const (
	weightOriginalConfidence = 0.4
	weightEvidenceCount      = 0.3
	weightTestability        = 0.2
	weightSpecificity        = 0.1
)

var highValueCategories = map[string]bool{
	"ROAS": true, "Revenue": true, "Efficiency": true, "Cost": true,
}

var specificTerms = []string{"creative", "audience", "landing page", "bidding", "targeting"}

// Scorer weights, ranks and filters insights and hypotheses.
type Scorer struct {
	Threshold float64
	now       func() time.Time
}

func New(threshold float64) (*Scorer, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return &Scorer{Threshold: threshold, now: time.Now}, nil
}

// Score ranks both sets by composite score (stable, descending) and splits them
// at the threshold. A score equal to the threshold passes.
func (s *Scorer) Score(insights []types.Insight, hypotheses []types.Hypothesis) types.Evaluation {
	scoredInsights := make([]types.ValidatedInsight, 0, len(insights))
	for _, in := range insights {
		scoredInsights = append(scoredInsights, ScoreInsight(in))
	}
	sort.SliceStable(scoredInsights, func(i, j int) bool {
		return scoredInsights[i].ValidationScore > scoredInsights[j].ValidationScore
	})

	scoredHyps := make([]types.ValidatedHypothesis, 0, len(hypotheses))
	for _, h := range hypotheses {
		scoredHyps = append(scoredHyps, ScoreHypothesis(h))
	}
	sort.SliceStable(scoredHyps, func(i, j int) bool {
		return scoredHyps[i].ConfidenceAdjusted > scoredHyps[j].ConfidenceAdjusted
	})

	ev := types.Evaluation{
		GeneratedAt:         s.now(),
		Threshold:           s.Threshold,
		ValidatedInsights:   []types.ValidatedInsight{},
		RejectedInsights:    []types.ValidatedInsight{},
		ValidatedHypotheses: []types.ValidatedHypothesis{},
		RejectedHypotheses:  []types.ValidatedHypothesis{},
	}
	for i := range scoredInsights {
		scoredInsights[i].Ranking = i + 1
		if scoredInsights[i].ValidationScore >= s.Threshold {
			ev.ValidatedInsights = append(ev.ValidatedInsights, scoredInsights[i])
		} else {
			ev.RejectedInsights = append(ev.RejectedInsights, scoredInsights[i])
		}
	}
	for i := range scoredHyps {
		scoredHyps[i].Ranking = i + 1
		if scoredHyps[i].ConfidenceAdjusted >= s.Threshold {
			ev.ValidatedHypotheses = append(ev.ValidatedHypotheses, scoredHyps[i])
		} else {
			ev.RejectedHypotheses = append(ev.RejectedHypotheses, scoredHyps[i])
		}
	}
	ev.QualityReport = BuildQualityReport(scoredInsights, scoredHyps, ev.ValidatedInsights, ev.ValidatedHypotheses)
	return ev
}

// ScoreInsight computes the weighted validation score of one insight.
// Ranking is left for Score to assign.
func ScoreInsight(in types.Insight) types.ValidatedInsight {
	c := types.InsightScoreComponents{
		Confidence:              clamp(in.Confidence),
		EvidenceStrength:        EvidenceStrength(in.Evidence),
		StatisticalSignificance: Significance(in.Evidence),
		BusinessRelevance:       BusinessRelevance(in.Impact, in.Category),
	}
	score := c.Confidence*weightConfidence +
		c.EvidenceStrength*weightEvidence +
		c.StatisticalSignificance*weightSignificance +
		c.BusinessRelevance*weightRelevance

	return types.ValidatedInsight{
		Insight:                 in,
		ValidationScore:         score,
		ConfidenceAdjusted:      in.Confidence * score,
		ScoreComponents:         c,
		ValidationNotes:         insightNotes(c),
		StatisticalSignificance: c.StatisticalSignificance > 0.7,
	}
}

// ScoreHypothesis computes the adjusted confidence of one hypothesis.
func ScoreHypothesis(h types.Hypothesis) types.ValidatedHypothesis {
	testability := 0.5
	if h.Testable {
		testability = 1.0
	}
	c := types.HypothesisScoreComponents{
		OriginalConfidence: clamp(h.Confidence),
		EvidenceCount:      math.Min(float64(len(h.SupportingEvidence))/3, 1),
		Testability:        testability,
		Specificity:        Specificity(h),
	}
	score := c.OriginalConfidence*weightOriginalConfidence +
		c.EvidenceCount*weightEvidenceCount +
		c.Testability*weightTestability +
		c.Specificity*weightSpecificity

	return types.ValidatedHypothesis{
		Hypothesis:         h,
		ConfidenceAdjusted: score,
		ScoreComponents:    c,
		ValidationNotes:    hypothesisNotes(c),
	}
}

// EvidenceStrength: base 0.5, +0.2 numeric evidence, +0.15 for three or more
// entries, +0.15 when |change_pct| > 20.
func EvidenceStrength(ev types.Evidence) float64 {
	score := 0.5
	if ev.HasNumeric() {
		score += 0.2
	}
	if len(ev) >= 3 {
		score += 0.15
	}
	if pct, ok := ev.ChangePct(); ok && math.Abs(pct) > 20 {
		score += 0.15
	}
	return clamp(score)
}

// Significance is a step function of |change_pct|. It is a magnitude heuristic,
// not a statistical test.
func Significance(ev types.Evidence) float64 {
	pct, ok := ev.ChangePct()
	if !ok {
		return 0.50
	}
	switch change := math.Abs(pct); {
	case change > 30:
		return 0.95
	case change > 20:
		return 0.85
	case change > 10:
		return 0.70
	case change > 5:
		return 0.55
	default:
		return 0.40
	}
}

func BusinessRelevance(impact types.Impact, category string) float64 {
	score := 0.5
	switch impact {
	case types.ImpactCritical:
		score += 0.3
	case types.ImpactModerate:
		score += 0.2
	}
	if highValueCategories[category] {
		score += 0.2
	}
	return clamp(score)
}

func Specificity(h types.Hypothesis) float64 {
	score := 0.5
	statement := strings.ToLower(h.Statement)
	for _, term := range specificTerms {
		if strings.Contains(statement, term) {
			score += 0.3
			break
		}
	}
	if h.RecommendedTest != "" {
		score += 0.2
	}
	return clamp(score)
}

func insightNotes(c types.InsightScoreComponents) string {
	var notes []string
	if c.Confidence > 0.8 {
		notes = append(notes, "High initial confidence")
	}
	if c.StatisticalSignificance > 0.8 {
		notes = append(notes, "Statistically significant change")
	}
	if c.EvidenceStrength > 0.7 {
		notes = append(notes, "Strong supporting evidence")
	}
	if c.BusinessRelevance > 0.7 {
		notes = append(notes, "High business impact")
	}
	if len(notes) == 0 {
		notes = append(notes, "Moderate confidence, requires further validation")
	}
	return strings.Join(notes, "; ")
}

func hypothesisNotes(c types.HypothesisScoreComponents) string {
	var notes []string
	if c.Testability == 1.0 {
		notes = append(notes, "Testable hypothesis")
	} else {
		notes = append(notes, "Difficult to test directly")
	}
	if c.EvidenceCount > 0.7 {
		notes = append(notes, "Well-supported by evidence")
	}
	if c.Specificity > 0.7 {
		notes = append(notes, "Specific and actionable")
	}
	return strings.Join(notes, "; ")
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
