package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ads-insights-go/internal/config"
	"ads-insights-go/internal/logger"
)

type globalFlags struct {
	configPath string
	dataPath   string
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "analyst",
		Short:         "Ad performance analyst: diagnose metric changes and recommend creatives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "config/config.yaml", "path to YAML config")
	root.PersistentFlags().StringVar(&g.dataPath, "data", "", "dataset path (.csv or .xlsx), overrides config")

	root.AddCommand(runCmd(&g), summaryCmd(&g))
	return root
}

// loadConfig applies the global flags over the file and environment config.
func loadConfig(g *globalFlags, log *logger.Logger) (config.Config, error) {
	cfg, found, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if !found {
		log.WithField("path", g.configPath).Warn("config file not found, using defaults")
	}
	if g.dataPath != "" {
		cfg.DataPath = g.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
