package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

func summaryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the dataset summary and data quality report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithOutput(os.Stderr)
			cfg, err := loadConfig(g, log)
			if err != nil {
				return err
			}
			table, err := dataset.LoadTableWithLogger(cfg.DataPath, log)
			if err != nil {
				return err
			}
			out := struct {
				Path       string            `json:"path"`
				Summary    types.DataSummary `json:"data_summary"`
				Quality    types.DataQuality `json:"data_quality_report"`
				Dimensions []string          `json:"dimensions"`
			}{
				Path:       table.Path,
				Summary:    dataset.Summarize(table.Rows, 0, 0),
				Quality:    dataset.Quality(table),
				Dimensions: table.Dimensions,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
