package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/artifact"
	"github.com/mcpchecker/sessionreport/pkg/logscan"
	"github.com/mcpchecker/sessionreport/pkg/report"
	"github.com/mcpchecker/sessionreport/pkg/runs"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var (
		root       string
		resultsDir string
		logFile    string
		outputFile string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the correlated session report from run logs",
		Long: `Scan every run directory under the root for its output log, reconstruct
one record per finished session, and attach the matching result artifact.

The report is written as a JSON array, by default to final_report.json under the root.

Examples:
  sessionreport report --root ./wandb --results ./aiopslab/data/results
  sessionreport report --log ./wandb/run-20250101/files/output.log --output report.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if root != "" {
				cfg.Runs.Root = root
			}
			if outputFile != "" {
				cfg.Runs.Output = outputFile
			}
			if cmd.Flags().Changed("workers") {
				cfg.Runs.Workers = workers
			}
			resultsDir = firstNonEmpty(resultsDir, cfg.Artifacts.Dir)

			scanner, err := cfg.Scanner()
			if err != nil {
				return fmt.Errorf("invalid markers: %w", err)
			}

			var records []*report.SessionRecord
			if logFile != "" {
				records, err = logscan.ParseFile(logFile, scanner)
				if err != nil {
					return err
				}
				artifact.NewCorrelator(artifact.BuildIndex(resultsDir)).Correlate(records)
			} else {
				records, err = runs.Aggregate(cmd.Context(), cfg.Runs.Root, resultsDir, runs.Options{
					Layout:  cfg.Runs.Layout,
					Scanner: scanner,
					Workers: cfg.Runs.Workers,
				})
				if err != nil {
					return fmt.Errorf("failed to aggregate runs: %w", err)
				}
			}

			reportPath := cfg.ReportPath()
			if err := report.Save(reportPath, records); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}

			out := cmd.OutOrStdout()
			printReportStats(out, report.CalculateStats(reportPath, records))
			fmt.Fprintf(out, "\n📄 Final report saved to %s\n", reportPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory containing run-* directories (default from config: ./wandb)")
	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")
	cmd.Flags().StringVar(&logFile, "log", "", "Parse a single log file instead of discovering runs")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report output path (default <root>/final_report.json)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of runs parsed concurrently")

	return cmd
}

func printReportStats(w io.Writer, stats report.Stats) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	_, _ = bold.Fprintln(w, "=== Session Report ===")
	fmt.Fprintf(w, "Sessions:        %d\n", stats.SessionsTotal)
	fmt.Fprintf(w, "Succeeded:       %d\n", stats.SessionsSucceeded)
	if stats.SessionsFailed > 0 {
		_, _ = red.Fprintf(w, "Failed:          %d\n", stats.SessionsFailed)
	} else {
		fmt.Fprintf(w, "Failed:          %d\n", stats.SessionsFailed)
	}
	if stats.InvalidFormat > 0 {
		_, _ = yellow.Fprintf(w, "Invalid format:  %d\n", stats.InvalidFormat)
	} else {
		fmt.Fprintf(w, "Invalid format:  %d\n", stats.InvalidFormat)
	}
	fmt.Fprintf(w, "Correlated:      %d (%.2f%%)\n", stats.Correlated, stats.CorrelationRate*100)
	if stats.JSONErrors > 0 {
		_, _ = yellow.Fprintf(w, "JSON errors:     %d\n", stats.JSONErrors)
	} else {
		fmt.Fprintf(w, "JSON errors:     %d\n", stats.JSONErrors)
	}
}
