package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ads-insights-go/internal/types"
)

const (
	maxReportInsights   = 5
	maxReportHypotheses = 3
	maxReportCreatives  = 5
	maxReportTests      = 3
)

// RenderMarkdown renders the analysis as a human-readable report.
func RenderMarkdown(r *types.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("# Ad Performance Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("**Generated:** %s  \n", r.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Execution ID:** %s  \n", r.ExecutionID))
	sb.WriteString(fmt.Sprintf("**Query:** %s  \n", r.Query))
	sb.WriteString(fmt.Sprintf("**Execution Time:** %.2f seconds\n\n", r.ExecutionTimeSeconds))
	sb.WriteString("---\n\n")

	// Summary
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(fmt.Sprintf("Analysis type: %s. Objectives:\n\n", r.Plan.AnalysisType))
	for _, o := range r.Plan.Objectives {
		sb.WriteString(fmt.Sprintf("- %s\n", o))
	}
	sb.WriteString("\n### Key Findings\n\n")
	insights := head(r.Insights, maxReportInsights)
	if len(insights) == 0 {
		sb.WriteString("No insights passed validation.\n")
	}
	for i, in := range insights {
		sb.WriteString(fmt.Sprintf("%d. **%s** (Confidence: %.0f%%)\n", i+1, in.Title, in.Confidence*100))
	}
	sb.WriteString("\n---\n\n")

	// Data
	ds := r.Data.Summary
	sb.WriteString("## Performance Metrics Overview\n\n")
	sb.WriteString(fmt.Sprintf("**Data Range:** %s to %s  \n", orNA(ds.DateRange.Min), orNA(ds.DateRange.Max)))
	sb.WriteString(fmt.Sprintf("**Total Records:** %d  \n", ds.TotalRows))
	sb.WriteString(fmt.Sprintf("**Baseline Period:** %s to %s (%d records)  \n",
		r.Plan.TimeWindows.Baseline.StartDate, r.Plan.TimeWindows.Baseline.EndDate, ds.BaselineRows))
	sb.WriteString(fmt.Sprintf("**Comparison Period:** %s to %s (%d records)\n\n",
		r.Plan.TimeWindows.Comparison.StartDate, r.Plan.TimeWindows.Comparison.EndDate, ds.ComparisonRows))

	if len(r.Data.MetricChanges) > 0 {
		sb.WriteString("| Metric | Baseline | Comparison | Change | Direction |\n")
		sb.WriteString("|--------|----------|------------|--------|-----------|\n")
		for _, nv := range r.Data.BaselineMetrics.Values() {
			c, ok := r.Data.MetricChanges[nv.Name]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %+.2f%% | %s |\n",
				nv.Name, c.Baseline, c.Comparison, c.PercentChange, c.Direction))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Not enough data in both periods to compare metrics.\n\n")
	}

	// Segments
	if len(r.Data.Segments) > 0 {
		sb.WriteString("### Segments (comparison period)\n\n")
		sb.WriteString("| Dimension | Best | Best ROAS | Worst | Worst ROAS |\n")
		sb.WriteString("|-----------|------|-----------|-------|------------|\n")
		for _, dim := range sortedKeys(r.Data.Segments) {
			s := r.Data.Segments[dim]
			if len(s.Top) == 0 || len(s.Bottom) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %s | %.2f |\n",
				dim, s.Top[0].Value, s.Top[0].ROAS, s.Bottom[0].Value, s.Bottom[0].ROAS))
		}
		sb.WriteString("\n")
	}

	// Insights
	sb.WriteString("## Detailed Insights\n\n")
	for i, in := range insights {
		sb.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, in.Title))
		sb.WriteString(fmt.Sprintf("**Category:** %s  \n", in.Category))
		sb.WriteString(fmt.Sprintf("**Impact:** %s  \n", in.Impact))
		sb.WriteString(fmt.Sprintf("**Confidence:** %.0f%%  \n", in.Confidence*100))
		sb.WriteString(fmt.Sprintf("**Validation Score:** %.2f (rank %d)  \n\n", in.ValidationScore, in.Ranking))
		sb.WriteString(in.Description + "\n\n")
		if len(in.Evidence) > 0 {
			sb.WriteString("**Evidence:**\n")
			for _, k := range sortedKeys(in.Evidence) {
				switch v := in.Evidence[k].(type) {
				case float64:
					sb.WriteString(fmt.Sprintf("- %s: %.2f\n", k, v))
				default:
					sb.WriteString(fmt.Sprintf("- %s: %v\n", k, v))
				}
			}
		}
		if in.ValidationNotes != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", in.ValidationNotes))
		}
		sb.WriteString("\n")
	}

	if len(r.Correlations) > 0 {
		sb.WriteString("### Correlations\n\n")
		for _, c := range r.Correlations {
			sb.WriteString(fmt.Sprintf("- **%s** (%s, strength %.2f): %s\n",
				strings.Join(c.Metrics, " / "), c.Relationship, c.Strength, c.Description))
		}
		sb.WriteString("\n")
	}

	// Hypotheses
	sb.WriteString("---\n\n## Hypotheses\n\n")
	for i, h := range head(r.Hypotheses, maxReportHypotheses) {
		sb.WriteString(fmt.Sprintf("### Hypothesis %d: %s\n\n", i+1, h.Statement))
		sb.WriteString(fmt.Sprintf("**Confidence:** %.0f%% (adjusted %.2f)  \n", h.Confidence*100, h.ConfidenceAdjusted))
		sb.WriteString(fmt.Sprintf("**Testable:** %s  \n\n", yesNo(h.Testable)))
		sb.WriteString(h.Reasoning + "\n\n")
		if len(h.SupportingEvidence) > 0 {
			sb.WriteString("**Supporting Evidence:**\n")
			for _, e := range h.SupportingEvidence {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
		}
		if h.RecommendedTest != "" {
			sb.WriteString(fmt.Sprintf("\n**Recommended Test:** %s\n", h.RecommendedTest))
		}
		sb.WriteString("\n")
	}

	// Creatives
	sb.WriteString("---\n\n## Creative Recommendations\n\n")
	for i, c := range head(r.Creatives, maxReportCreatives) {
		sb.WriteString(fmt.Sprintf("### Creative %d: %s\n\n", i+1, c.Headline))
		sb.WriteString(fmt.Sprintf("**Type:** %s  \n", c.Type))
		sb.WriteString(fmt.Sprintf("**Format:** %s  \n", c.Format))
		sb.WriteString(fmt.Sprintf("**CTA:** %s  \n\n", c.CTA))
		sb.WriteString(fmt.Sprintf("**Body Text:**  \n%s\n\n", c.BodyText))
		sb.WriteString(fmt.Sprintf("**Rationale:** %s  \n", c.Rationale))
		sb.WriteString(fmt.Sprintf("**Target Audience:** %s  \n", c.TargetAudience))
		sb.WriteString(fmt.Sprintf("**Expected Impact:** %s  \n\n", c.ExpectedImpact))
	}

	sb.WriteString("---\n\n## A/B Testing Recommendations\n\n")
	for i, t := range head(r.ABTests, maxReportTests) {
		sb.WriteString(fmt.Sprintf("### Test %d: %s\n\n", i+1, t.TestName))
		sb.WriteString(fmt.Sprintf("**Hypothesis:** %s  \n", t.Hypothesis))
		sb.WriteString(fmt.Sprintf("**Success Metric:** %s  \n", t.SuccessMetric))
		sb.WriteString(fmt.Sprintf("**Target Lift:** %s  \n", t.TargetLift))
		sb.WriteString(fmt.Sprintf("**Duration:** %d days  \n", t.DurationDays))
		sb.WriteString(fmt.Sprintf("**Budget Split:** %s  \n\n", t.BudgetSplit))
	}

	sb.WriteString("---\n\n## Creative Strategy\n\n")
	if r.CreativeStrategy == "" {
		sb.WriteString("No strategy provided.\n")
	} else {
		sb.WriteString(strings.TrimSpace(r.CreativeStrategy) + "\n")
	}

	// Quality
	q := r.QualityReport
	sb.WriteString("\n---\n\n## Validation Quality\n\n")
	sb.WriteString("| Category | Submitted | Approved | Rejected | Approval Rate | Avg Score |\n")
	sb.WriteString("|----------|-----------|----------|----------|---------------|-----------|\n")
	sb.WriteString(fmt.Sprintf("| Insights | %d | %d | %d | %.1f%% | %.2f |\n",
		q.Insights.TotalSubmitted, q.Insights.Approved, q.Insights.Rejected, q.Insights.ApprovalRate, q.Insights.AverageScore))
	sb.WriteString(fmt.Sprintf("| Hypotheses | %d | %d | %d | %.1f%% | %.2f |\n\n",
		q.Hypotheses.TotalSubmitted, q.Hypotheses.Approved, q.Hypotheses.Rejected, q.Hypotheses.ApprovalRate, q.Hypotheses.AverageScore))

	return sb.String()
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
