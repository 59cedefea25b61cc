// internal/pipeline/pipeline.go
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ads-insights-go/internal/actionable"
	"ads-insights-go/internal/aggregator"
	"ads-insights-go/internal/config"
	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/evaluator"
	"ads-insights-go/internal/insight"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/observability"
	"ads-insights-go/internal/planner"
	"ads-insights-go/internal/types"
)

// Stage names as they appear in the execution log and metrics.
const (
	StagePlanner   = "planner"
	StageData      = "data_agent"
	StageInsight   = "insight_agent"
	StageEvaluator = "evaluator"
	StageCreative  = "creative_agent"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

var ErrNoData = errors.New("no rows to analyze")

type Option func(*Orchestrator)

func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator runs the five analysis stages in order for one query.
// It holds no per-run state and may be shared between goroutines.
type Orchestrator struct {
	planner   *planner.Planner
	insights  *insight.Engine
	scorer    *evaluator.Scorer
	creatives *actionable.Generator

	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func New(cfg config.Config, opts ...Option) (*Orchestrator, error) {
	scorer, err := evaluator.New(cfg.MinConfidence)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		planner: planner.New(planner.Options{
			DefaultWindowDays: cfg.DefaultWindowDays,
			DefaultSegments:   cfg.DefaultSegments,
		}),
		insights: insight.NewEngine(cfg.ProductCategory),
		scorer:   scorer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.New()
	}
	o.creatives = actionable.New(cfg, o.log)
	return o, nil
}

// run collects the execution log of one Run call.
type run struct {
	id      string
	log     *logger.Logger
	entries []types.ExecutionLogEntry
}

// Run analyses table for query. The first failing stage aborts the run and its
// error is returned wrapped with the stage name.
func (o *Orchestrator) Run(query string, table *dataset.Table) (*types.AnalysisResult, error) {
	start := o.now()
	r := &run{id: "EXEC_" + uuid.NewString()}
	r.log = o.log.WithRun(r.id).WithComponent("pipeline")
	r.log.WithField("query", query).Info("analysis started")

	res := &types.AnalysisResult{ExecutionID: r.id, Query: query}

	err := o.runStages(r, res, query, table)
	if err != nil {
		o.metrics.RecordRun(statusFailure)
		r.log.WithError(err).Error("analysis failed")
		return nil, err
	}

	end := o.now()
	res.Timestamp = end
	res.ExecutionTimeSeconds = end.Sub(start).Seconds()
	res.ExecutionLog = r.entries
	o.metrics.RecordRun(statusSuccess)
	r.log.WithFields(logrus.Fields{
		"duration_ms": end.Sub(start).Milliseconds(),
		"insights":    len(res.Insights),
		"hypotheses":  len(res.Hypotheses),
		"creatives":   len(res.Creatives),
	}).Info("analysis complete")
	return res, nil
}

func (o *Orchestrator) runStages(r *run, res *types.AnalysisResult, query string, table *dataset.Table) error {
	if table == nil || len(table.Rows) == 0 {
		return o.stage(r, StageData, func() (map[string]any, error) {
			return nil, fmt.Errorf("%w: %w", dataset.ErrLoad, ErrNoData)
		})
	}

	err := o.stage(r, StagePlanner, func() (map[string]any, error) {
		res.Plan = o.planner.Parse(query, dataset.LatestDate(table.Rows))
		if err := res.Plan.Validate(); err != nil {
			return nil, err
		}
		return map[string]any{
			"objectives":    len(res.Plan.Objectives),
			"metrics":       res.Plan.MetricsToAnalyze,
			"analysis_type": res.Plan.AnalysisType,
		}, nil
	})
	if err != nil {
		return err
	}

	err = o.stage(r, StageData, func() (map[string]any, error) {
		data, err := analyzeData(res.Plan, table)
		if err != nil {
			return nil, err
		}
		res.Data = data
		return map[string]any{
			"baseline_rows":   data.Summary.BaselineRows,
			"comparison_rows": data.Summary.ComparisonRows,
			"metric_changes":  len(data.MetricChanges),
			"segments":        len(data.Segments),
		}, nil
	})
	if err != nil {
		return err
	}

	var derived types.InsightResult
	err = o.stage(r, StageInsight, func() (map[string]any, error) {
		derived = o.insights.Derive(res.Data.MetricChanges, res.Data.Segments)
		res.Correlations = derived.Correlations
		return map[string]any{
			"insights":     len(derived.Insights),
			"hypotheses":   len(derived.Hypotheses),
			"correlations": len(derived.Correlations),
		}, nil
	})
	if err != nil {
		return err
	}

	var ev types.Evaluation
	err = o.stage(r, StageEvaluator, func() (map[string]any, error) {
		ev = o.scorer.Score(derived.Insights, derived.Hypotheses)
		res.Insights = ev.ValidatedInsights
		res.Hypotheses = ev.ValidatedHypotheses
		res.QualityReport = ev.QualityReport
		o.metrics.RecordEvaluation(len(ev.ValidatedInsights), len(ev.RejectedInsights),
			len(ev.ValidatedHypotheses), len(ev.RejectedHypotheses))
		return map[string]any{
			"validated_insights":   len(ev.ValidatedInsights),
			"rejected_insights":    len(ev.RejectedInsights),
			"validated_hypotheses": len(ev.ValidatedHypotheses),
			"rejected_hypotheses":  len(ev.RejectedHypotheses),
		}, nil
	})
	if err != nil {
		return err
	}

	return o.stage(r, StageCreative, func() (map[string]any, error) {
		cr := o.creatives.Generate(ev, res.Plan.Objectives)
		res.Creatives = cr.Creatives
		res.ABTests = cr.ABTests
		res.CreativeStrategy = cr.CreativeStrategy
		return map[string]any{
			"creatives": len(cr.Creatives),
			"ab_tests":  len(cr.ABTests),
		}, nil
	})
}

// stage times fn and appends its execution log entry.
func (o *Orchestrator) stage(r *run, name string, fn func() (map[string]any, error)) error {
	start := o.now()
	details, err := fn()
	elapsed := o.now().Sub(start)
	o.metrics.ObserveStage(name, elapsed)

	if details == nil {
		details = map[string]any{}
	}
	details["execution_time_seconds"] = elapsed.Seconds()
	status := statusSuccess
	if err != nil {
		status = statusFailure
		details["error"] = err.Error()
	}
	r.entries = append(r.entries, types.ExecutionLogEntry{
		Timestamp: o.now(),
		Agent:     name,
		Status:    status,
		Details:   details,
	})

	entry := r.log.WithFields(logrus.Fields{"stage": name, "duration_ms": elapsed.Milliseconds()})
	if err != nil {
		entry.WithField("error", err.Error()).Error("stage failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	entry.Debug("stage finished")
	return nil
}

// analyzeData splits the table into the plan's windows and compares them.
// Segments are ranked on the comparison window.
func analyzeData(plan types.Plan, table *dataset.Table) (types.DataResult, error) {
	baseline, err := aggregator.FilterWindow(table.Rows, plan.TimeWindows.Baseline)
	if err != nil {
		return types.DataResult{}, fmt.Errorf("baseline window: %w", err)
	}
	comparison, err := aggregator.FilterWindow(table.Rows, plan.TimeWindows.Comparison)
	if err != nil {
		return types.DataResult{}, fmt.Errorf("comparison window: %w", err)
	}

	bm := aggregator.Aggregate(baseline)
	cm := aggregator.Aggregate(comparison)
	raw := append(aggregator.DeriveRows(baseline, "baseline"), aggregator.DeriveRows(comparison, "comparison")...)
	return types.DataResult{
		Summary:           dataset.Summarize(table.Rows, len(baseline), len(comparison)),
		BaselineMetrics:   bm,
		ComparisonMetrics: cm,
		MetricChanges:     aggregator.ComputeChanges(bm, cm),
		Segments:          aggregator.AnalyzeSegments(comparison, plan.Segments),
		Quality:           dataset.Quality(table),
		RawData:           raw,
	}, nil
}
