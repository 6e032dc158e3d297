package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/spf13/cobra"
)

// NewMetricsCmd creates the metrics command
func NewMetricsCmd() *cobra.Command {
	var (
		resultsDir   string
		agent        string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Summarize result artifacts per task category",
		Long: `Read every result artifact of one agent and report, per task category,
the number of problems and the average of each metric.

Only the first artifact seen for a problem id is counted. Artifacts missing
any metric of a category are left out of that category.

Examples:
  sessionreport metrics --results ./aiopslab/data/results --agent deepseek-r1
  sessionreport metrics --agent gpt-4o-mini --output json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			summary := metrics.AggregateDir(
				firstNonEmpty(resultsDir, cfg.Artifacts.Dir),
				firstNonEmpty(agent, cfg.Metrics.Agent),
			)

			switch outputFormat {
			case "text":
				printSummary(cmd.OutOrStdout(), summary)
			case "json":
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal summary: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent whose artifacts are summarized (default from config)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")

	return cmd
}

func printSummary(w io.Writer, summary metrics.Summary) {
	bold := color.New(color.Bold)

	for _, b := range summary.Buckets {
		_, _ = bold.Fprintf(w, "%s:\n", b.Title)
		if b.Count == 0 {
			fmt.Fprintln(w, "  No data")
			continue
		}
		fmt.Fprintf(w, "  Number of problems: %d\n", b.Count)
		for _, m := range b.Metrics {
			fmt.Fprintf(w, "  Average %s: %.2f\n", metricLabel(m), m.Value())
		}
	}
}

func metricLabel(m metrics.MetricStat) string {
	if m.Percent {
		return m.Label + "(%)"
	}
	return m.Label
}
