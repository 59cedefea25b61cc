package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/observability"
	"ads-insights-go/internal/processor"
	"ads-insights-go/internal/types"
)

type server struct {
	proc    *processor.Processor
	table   *dataset.Table
	metrics *observability.Metrics
}

type summaryResponse struct {
	Summary    types.DataSummary `json:"data_summary"`
	Quality    types.DataQuality `json:"data_quality_report"`
	Dimensions []string          `json:"dimensions"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/analyze", s.handleAnalyze)

	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, summaryResponse{
			Summary:    dataset.Summarize(s.table.Rows, 0, 0),
			Quality:    dataset.Quality(s.table),
			Dimensions: s.table.Dimensions,
		}, logger.New().WithRequest(r))
	})

	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")

	query := r.URL.Query().Get("query")
	if query == "" {
		reqLog.Warn("missing query")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query"}, reqLog)
		return
	}
	reqLog = reqLog.WithField("query", query)
	reqLog.Info("analyze request received")

	res, err := s.proc.Process(r.Context(), query)
	reqLog = reqLog.WithField("duration_ms", res.DurationMs)
	if err != nil {
		reqLog.WithField("error", err.Error()).Warn("analysis returned error")
		writeJSON(w, statusFor(err), res, reqLog)
		return
	}
	reqLog.Info("analysis finished")
	writeJSON(w, http.StatusOK, res, reqLog)
}

// statusFor maps bad input to 4xx and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidRange),
		errors.Is(err, types.ErrInvalidPlan),
		errors.Is(err, types.ErrOverlappingWindows):
		return http.StatusBadRequest
	case errors.Is(err, dataset.ErrLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
