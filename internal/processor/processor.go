package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/pipeline"
	"ads-insights-go/internal/report"
	"ads-insights-go/internal/types"
)

// ProcessResult is returned by /analyze and printed by the CLI.
type ProcessResult struct {
	Query      string                `json:"query"`
	Analysis   *types.AnalysisResult `json:"analysis,omitempty"`
	Reports    *report.Paths         `json:"reports,omitempty"`
	DurationMs int64                 `json:"duration_ms"`
	Error      string                `json:"error,omitempty"`
}

// Processor answers one query against a loaded table and optionally writes
// the report files.
type Processor struct {
	Orchestrator *pipeline.Orchestrator
	Table        *dataset.Table

	// Reports are written only when OutputDir is set.
	OutputDir string
	LogDir    string

	Log *logger.Logger
}

// Process runs the pipeline for query. A cancelled ctx stops the run before
// the analysis and before any report file is written.
func (p *Processor) Process(ctx context.Context, query string) (ProcessResult, error) {
	log := p.Log
	if log == nil {
		log = logger.New()
	}
	log = log.WithComponent("processor")

	start := time.Now()
	res := ProcessResult{Query: query}

	if strings.TrimSpace(query) == "" {
		err := fmt.Errorf("query is empty")
		res.Error = err.Error()
		return res, err
	}

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res, err
	}

	analysis, err := p.Orchestrator.Run(query, p.Table)
	if err != nil {
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		return res, err
	}
	res.Analysis = analysis

	if p.OutputDir != "" {
		if err := ctx.Err(); err != nil {
			log.Warn("cancelled before writing reports")
			res.Error = err.Error()
			res.DurationMs = time.Since(start).Milliseconds()
			return res, err
		}
		logDir := p.LogDir
		if logDir == "" {
			logDir = p.OutputDir
		}
		paths, err := report.Write(p.OutputDir, logDir, analysis)
		if err != nil {
			log.WithError(err).Error("writing reports failed")
			res.Error = err.Error()
			res.DurationMs = time.Since(start).Milliseconds()
			return res, fmt.Errorf("write reports: %w", err)
		}
		res.Reports = &paths
		log.WithField("dir", p.OutputDir).Info("reports written")
	}

	res.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}
