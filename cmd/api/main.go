package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"ads-insights-go/internal/config"
	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/observability"
	"ads-insights-go/internal/pipeline"
	"ads-insights-go/internal/processor"
)

func main() {
	_ = godotenv.Load() // loads .env

	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	log := logger.New()
	log.WithField("service", "ads-insights-go").Info("starting service")

	cfg, found, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if !found {
		log.WithField("path", *configPath).Warn("config file not found, using defaults")
	}

	// load the dataset once; requests only read it
	log.WithField("dataset_path", cfg.DataPath).Info("loading dataset")
	table, err := dataset.LoadTable(cfg.DataPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}
	log.WithField("rows", len(table.Rows)).WithField("skipped", table.Skipped).Info("dataset loaded")

	metrics := observability.NewMetrics()
	metrics.SetRowsLoaded(len(table.Rows))

	orch, err := pipeline.New(cfg, pipeline.WithLogger(log), pipeline.WithMetrics(metrics))
	if err != nil {
		log.WithError(err).Fatal("failed to build pipeline")
	}

	srv := &server{
		proc:    &processor.Processor{Orchestrator: orch, Table: table, Log: log},
		table:   table,
		metrics: metrics,
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
