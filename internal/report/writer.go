// Package report writes a finished analysis to disk.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"ads-insights-go/internal/types"
)

// Paths lists the files one Write produced.
type Paths struct {
	Insights     string `json:"insights"`
	Creatives    string `json:"creatives"`
	Markdown     string `json:"report"`
	ExecutionLog string `json:"execution_log"`
}

type insightsFile struct {
	Timestamp    time.Time                   `json:"timestamp"`
	ExecutionID  string                      `json:"execution_id"`
	Query        string                      `json:"query"`
	Insights     []types.ValidatedInsight    `json:"insights"`
	Hypotheses   []types.ValidatedHypothesis `json:"hypotheses"`
	Correlations []types.Correlation         `json:"correlations"`
	Quality      types.QualityReport         `json:"quality_report"`
	Summary      struct {
		TotalInsights   int     `json:"total_insights"`
		TotalHypotheses int     `json:"total_hypotheses"`
		ExecutionTime   float64 `json:"execution_time"`
	} `json:"summary"`
}

type creativesFile struct {
	Timestamp time.Time        `json:"timestamp"`
	Query     string           `json:"query"`
	Creatives []types.Creative `json:"creatives"`
	ABTests   []types.ABTest   `json:"ab_test_recommendations"`
	Strategy  string           `json:"creative_strategy"`
	Summary   struct {
		TotalCreatives int `json:"total_creatives"`
		TotalTests     int `json:"total_tests"`
	} `json:"summary"`
}

type executionLogFile struct {
	ExecutionID          string                    `json:"execution_id"`
	Query                string                    `json:"query"`
	Timestamp            time.Time                 `json:"timestamp"`
	ExecutionTimeSeconds float64                   `json:"execution_time_seconds"`
	Log                  []types.ExecutionLogEntry `json:"log"`
}

// Write stores insights.json, creatives.json and report.md under dir and
// execution_log.json under logDir. Both directories are created when missing.
func Write(dir, logDir string, r *types.AnalysisResult) (Paths, error) {
	for _, d := range []string{dir, logDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create %s: %w", d, err)
		}
	}
	p := Paths{
		Insights:     filepath.Join(dir, "insights.json"),
		Creatives:    filepath.Join(dir, "creatives.json"),
		Markdown:     filepath.Join(dir, "report.md"),
		ExecutionLog: filepath.Join(logDir, "execution_log.json"),
	}

	ins := insightsFile{
		Timestamp:    r.Timestamp,
		ExecutionID:  r.ExecutionID,
		Query:        r.Query,
		Insights:     roundInsights(r.Insights),
		Hypotheses:   roundHypotheses(r.Hypotheses),
		Correlations: r.Correlations,
		Quality:      r.QualityReport,
	}
	ins.Summary.TotalInsights = len(r.Insights)
	ins.Summary.TotalHypotheses = len(r.Hypotheses)
	ins.Summary.ExecutionTime = round2(r.ExecutionTimeSeconds)

	cr := creativesFile{
		Timestamp: r.Timestamp,
		Query:     r.Query,
		Creatives: r.Creatives,
		ABTests:   r.ABTests,
		Strategy:  r.CreativeStrategy,
	}
	cr.Summary.TotalCreatives = len(r.Creatives)
	cr.Summary.TotalTests = len(r.ABTests)

	el := executionLogFile{
		ExecutionID:          r.ExecutionID,
		Query:                r.Query,
		Timestamp:            r.Timestamp,
		ExecutionTimeSeconds: r.ExecutionTimeSeconds,
		Log:                  r.ExecutionLog,
	}

	if err := writeJSON(p.Insights, ins); err != nil {
		return Paths{}, err
	}
	if err := writeJSON(p.Creatives, cr); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(p.Markdown, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write %s: %w", p.Markdown, err)
	}
	if err := writeJSON(p.ExecutionLog, el); err != nil {
		return Paths{}, err
	}
	return p, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// roundInsights copies the insights with scores and numeric evidence at 2 dp.
func roundInsights(in []types.ValidatedInsight) []types.ValidatedInsight {
	out := make([]types.ValidatedInsight, len(in))
	for i, v := range in {
		v.ValidationScore = round2(v.ValidationScore)
		v.ConfidenceAdjusted = round2(v.ConfidenceAdjusted)
		v.ScoreComponents = types.InsightScoreComponents{
			Confidence:              round2(v.ScoreComponents.Confidence),
			EvidenceStrength:        round2(v.ScoreComponents.EvidenceStrength),
			StatisticalSignificance: round2(v.ScoreComponents.StatisticalSignificance),
			BusinessRelevance:       round2(v.ScoreComponents.BusinessRelevance),
		}
		ev := make(types.Evidence, len(v.Evidence))
		for k, x := range v.Evidence {
			if f, ok := x.(float64); ok {
				x = round2(f)
			}
			ev[k] = x
		}
		v.Evidence = ev
		out[i] = v
	}
	return out
}

func roundHypotheses(in []types.ValidatedHypothesis) []types.ValidatedHypothesis {
	out := make([]types.ValidatedHypothesis, len(in))
	for i, h := range in {
		h.ConfidenceAdjusted = round2(h.ConfidenceAdjusted)
		h.ScoreComponents.EvidenceCount = round2(h.ScoreComponents.EvidenceCount)
		out[i] = h
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
