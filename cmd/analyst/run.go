package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ads-insights-go/internal/dataset"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/pipeline"
	"ads-insights-go/internal/processor"
	"ads-insights-go/internal/types"
)

func runCmd(g *globalFlags) *cobra.Command {
	var (
		outDir    string
		logDir    string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   `run "<query>"`,
		Short: "Analyze the dataset for a question and write reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithOutput(os.Stderr)
			cfg, err := loadConfig(g, log)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				cfg.MinConfidence = threshold
			}
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			if logDir != "" {
				cfg.LogDir = logDir
			}

			table, err := dataset.LoadTableWithLogger(cfg.DataPath, log)
			if err != nil {
				return err
			}
			orch, err := pipeline.New(cfg, pipeline.WithLogger(log))
			if err != nil {
				return err
			}
			p := &processor.Processor{
				Orchestrator: orch,
				Table:        table,
				OutputDir:    cfg.OutputDir,
				LogDir:       cfg.LogDir,
				Log:          log,
			}
			res, err := p.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "report directory (default from config)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "execution log directory (default from config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.6, "minimum validation score in [0,1]")
	return cmd
}

func printSummary(w io.Writer, res processor.ProcessResult) {
	a := res.Analysis
	fmt.Fprintf(w, "Analysis %s finished in %dms\n", a.ExecutionID, res.DurationMs)
	fmt.Fprintf(w, "Comparison %s..%s vs baseline %s..%s\n",
		a.Plan.TimeWindows.Comparison.StartDate, a.Plan.TimeWindows.Comparison.EndDate,
		a.Plan.TimeWindows.Baseline.StartDate, a.Plan.TimeWindows.Baseline.EndDate)

	fmt.Fprintf(w, "\nTop findings (%d validated insights):\n", len(a.Insights))
	if len(a.Insights) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for i, in := range a.Insights {
		if i == 3 {
			break
		}
		fmt.Fprintf(w, "  %d. %s [%s, score %.2f]\n", i+1, in.Title, in.Impact, in.ValidationScore)
	}
	if h := topHypothesis(a.Hypotheses); h != nil {
		fmt.Fprintf(w, "\nLeading hypothesis: %s (%.2f)\n", h.Statement, h.ConfidenceAdjusted)
	}
	fmt.Fprintf(w, "\n%d creatives, %d A/B tests recommended\n", len(a.Creatives), len(a.ABTests))
	if res.Reports != nil {
		fmt.Fprintf(w, "Report: %s\n", res.Reports.Markdown)
	}
}

func topHypothesis(hs []types.ValidatedHypothesis) *types.ValidatedHypothesis {
	if len(hs) == 0 {
		return nil
	}
	return &hs[0]
}
