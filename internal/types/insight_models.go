// internal/types/insight_models.go
package types

import "time"

// --------------------------------------------
// Insight stage output
// --------------------------------------------

type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactModerate Impact = "moderate"
	ImpactCritical Impact = "critical"
)

// Evidence values are float64 or string.
type Evidence map[string]any

// ChangePct returns the change_pct entry when it is numeric.
func (e Evidence) ChangePct() (float64, bool) {
	v, ok := e["change_pct"]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// HasNumeric reports whether any value is a number.
func (e Evidence) HasNumeric() bool {
	for _, v := range e {
		if _, ok := toFloat(v); ok {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

type Insight struct {
	InsightID   string   `json:"insight_id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    Evidence `json:"evidence"`
	Confidence  float64  `json:"confidence"`
	Impact      Impact   `json:"impact"`
	Category    string   `json:"category"`
}

type Hypothesis struct {
	HypothesisID       string   `json:"hypothesis_id"`
	Statement          string   `json:"statement"`
	Reasoning          string   `json:"reasoning"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Confidence         float64  `json:"confidence"`
	Testable           bool     `json:"testable"`
	RecommendedTest    string   `json:"recommended_test"`
}

type Correlation struct {
	CorrelationID string   `json:"correlation_id"`
	Metrics       []string `json:"metrics"`
	Relationship  string   `json:"relationship"`
	Description   string   `json:"description"`
	Strength      float64  `json:"strength"`
	Ratio         *float64 `json:"ratio,omitempty"`
}

type InsightSummary struct {
	TotalInsights            int      `json:"total_insights"`
	CriticalInsights         int      `json:"critical_insights"`
	ModerateInsights         int      `json:"moderate_insights"`
	TotalHypotheses          int      `json:"total_hypotheses"`
	HighConfidenceHypotheses int      `json:"high_confidence_hypotheses"`
	KeyFindings              []string `json:"key_findings"`
}

type InsightResult struct {
	GeneratedAt  time.Time      `json:"timestamp"`
	Insights     []Insight      `json:"insights"`
	Hypotheses   []Hypothesis   `json:"hypotheses"`
	Correlations []Correlation  `json:"correlations"`
	Summary      InsightSummary `json:"summary"`
}

// --------------------------------------------
// Evaluator stage output
// --------------------------------------------

type InsightScoreComponents struct {
	Confidence              float64 `json:"confidence"`
	EvidenceStrength        float64 `json:"evidence_strength"`
	StatisticalSignificance float64 `json:"statistical_significance"`
	BusinessRelevance       float64 `json:"business_relevance"`
}

// ValidatedInsight wraps an Insight with its validation fields.
type ValidatedInsight struct {
	Insight
	ValidationScore         float64                `json:"validation_score"`
	ConfidenceAdjusted      float64                `json:"confidence_adjusted"`
	ScoreComponents         InsightScoreComponents `json:"score_components"`
	Ranking                 int                    `json:"ranking"`
	ValidationNotes         string                 `json:"validation_notes"`
	StatisticalSignificance bool                   `json:"statistical_significance"`
}

type HypothesisScoreComponents struct {
	OriginalConfidence float64 `json:"original_confidence"`
	EvidenceCount      float64 `json:"evidence_count"`
	Testability        float64 `json:"testability"`
	Specificity        float64 `json:"specificity"`
}

// ValidatedHypothesis wraps a Hypothesis with its validation fields.
type ValidatedHypothesis struct {
	Hypothesis
	ConfidenceAdjusted float64                   `json:"confidence_adjusted"`
	ScoreComponents    HypothesisScoreComponents `json:"score_components"`
	Ranking            int                       `json:"ranking"`
	ValidationNotes    string                    `json:"validation_notes"`
}

type CategoryQuality struct {
	TotalSubmitted int     `json:"total_submitted"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ApprovalRate   float64 `json:"approval_rate"`
	AverageScore   float64 `json:"average_score"`
}

type QualityMetrics struct {
	HighConfidenceInsights   int `json:"high_confidence_insights"`
	ActionableHypotheses     int `json:"actionable_hypotheses"`
	StatisticallySignificant int `json:"statistically_significant"`
}

type QualityReport struct {
	Insights       CategoryQuality `json:"insights"`
	Hypotheses     CategoryQuality `json:"hypotheses"`
	QualityMetrics QualityMetrics  `json:"quality_metrics"`
}

type Evaluation struct {
	GeneratedAt         time.Time             `json:"timestamp"`
	Threshold           float64               `json:"threshold"`
	ValidatedInsights   []ValidatedInsight    `json:"validated_insights"`
	RejectedInsights    []ValidatedInsight    `json:"rejected_insights"`
	ValidatedHypotheses []ValidatedHypothesis `json:"validated_hypotheses"`
	RejectedHypotheses  []ValidatedHypothesis `json:"rejected_hypotheses"`
	QualityReport       QualityReport         `json:"quality_report"`
}

// --------------------------------------------
// Creative stage output
// --------------------------------------------

type Creative struct {
	CreativeID     string `json:"creative_id"`
	Type           string `json:"type"`
	Format         string `json:"format"`
	Headline       string `json:"headline"`
	BodyText       string `json:"body_text"`
	CTA            string `json:"cta"`
	Rationale      string `json:"rationale"`
	TargetAudience string `json:"target_audience"`
	ExpectedImpact string `json:"expected_impact"`
	VisualConcept  string `json:"visual_concept"`
}

type TestVariant struct {
	Description string   `json:"description"`
	CreativeIDs []string `json:"creative_ids"`
}

type ABTest struct {
	TestID        string      `json:"test_id"`
	TestName      string      `json:"test_name"`
	Hypothesis    string      `json:"hypothesis"`
	VariantA      TestVariant `json:"variant_a"`
	VariantB      TestVariant `json:"variant_b"`
	SuccessMetric string      `json:"success_metric"`
	TargetLift    string      `json:"target_lift"`
	DurationDays  int         `json:"duration_days"`
	BudgetSplit   string      `json:"budget_split"`
}

type CreativeSummary struct {
	TotalCreatives   int      `json:"total_creatives"`
	CreativeTypes    []string `json:"creative_types"`
	RecommendedTests int      `json:"recommended_tests"`
}

type CreativeResult struct {
	GeneratedAt      time.Time       `json:"timestamp"`
	Creatives        []Creative      `json:"creatives"`
	ABTests          []ABTest        `json:"ab_test_recommendations"`
	CreativeStrategy string          `json:"creative_strategy"`
	Summary          CreativeSummary `json:"summary"`
}

// --------------------------------------------
// Data stage output
// --------------------------------------------

type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type DataSummary struct {
	TotalRows      int       `json:"total_rows"`
	BaselineRows   int       `json:"baseline_rows"`
	ComparisonRows int       `json:"comparison_rows"`
	DateRange      DateRange `json:"date_range"`
}

type DataQuality struct {
	ZeroSpendRows       int            `json:"zero_spend_rows"`
	ZeroImpressionsRows int            `json:"zero_impressions_rows"`
	NegativeValues      map[string]int `json:"negative_values"`
	MissingValues       map[string]int `json:"missing_values"`
}

type DataResult struct {
	Summary           DataSummary              `json:"data_summary"`
	BaselineMetrics   MetricVector             `json:"baseline_metrics"`
	ComparisonMetrics MetricVector             `json:"comparison_metrics"`
	MetricChanges     ChangeSet                `json:"metric_changes"`
	Segments          map[string]SegmentResult `json:"segment_analysis"`
	Quality           DataQuality              `json:"data_quality_report"`
	RawData           []DerivedRow             `json:"raw_data,omitempty"`
}

// --------------------------------------------
// Whole run
// --------------------------------------------

type ExecutionLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Agent     string         `json:"agent"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details"`
}

type AnalysisResult struct {
	ExecutionID          string                `json:"execution_id"`
	Query                string                `json:"query"`
	ExecutionTimeSeconds float64               `json:"execution_time_seconds"`
	Timestamp            time.Time             `json:"timestamp"`
	Plan                 Plan                  `json:"plan"`
	Data                 DataResult            `json:"data"`
	Correlations         []Correlation         `json:"correlations"`
	Insights             []ValidatedInsight    `json:"insights"`
	Hypotheses           []ValidatedHypothesis `json:"hypotheses"`
	QualityReport        QualityReport         `json:"quality_report"`
	Creatives            []Creative            `json:"creatives"`
	ABTests              []ABTest              `json:"ab_tests"`
	CreativeStrategy     string                `json:"creative_strategy"`
	ExecutionLog         []ExecutionLogEntry   `json:"execution_log"`
}
