package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"
)

// NewFormatErrorsCmd creates the format-errors command
func NewFormatErrorsCmd() *cobra.Command {
	var (
		resultsDir string
		agent      string
		marker     string
		since      float64
	)

	cmd := &cobra.Command{
		Use:   "format-errors",
		Short: "Measure how often the harness could not parse an agent's responses",
		Long: `Count the environment messages in each artifact trace that report a
response parsing error, and relate them to the number of steps taken.

Examples:
  sessionreport format-errors --agent Qwen2.5-Coder-3B-Instruct
  sessionreport format-errors --agent gpt-4o-mini --since 1735689600`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := metrics.FormatErrorOptions{
				Agent:        firstNonEmpty(agent, cfg.FormatErrors.Agent),
				Marker:       firstNonEmpty(marker, cfg.FormatErrors.Marker),
				MinStartTime: cfg.FormatErrors.MinStartTime,
			}
			if cmd.Flags().Changed("since") {
				opts.MinStartTime = ptr.To(since)
			}

			stats := metrics.AnalyzeFormatErrors(firstNonEmpty(resultsDir, cfg.Artifacts.Dir), opts)
			printFormatErrors(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent whose artifacts are analyzed (default from config)")
	cmd.Flags().StringVar(&marker, "marker", "", "Text identifying a parsing error message (default from config)")
	cmd.Flags().Float64Var(&since, "since", 0, "Only analyze artifacts started after this unix timestamp")

	return cmd
}

func printFormatErrors(w io.Writer, stats metrics.FormatErrorStats) {
	if stats.Files == 0 {
		_, _ = color.New(color.FgYellow).Fprintf(w, "No agent logs found matching '%s'.\n", stats.Agent)
		return
	}

	_, _ = color.New(color.Bold).Fprintf(w, "=== %s Error Parsing Analysis ===\n", stats.Agent)
	fmt.Fprintf(w, "Files analyzed:       %d\n", stats.Files)
	fmt.Fprintf(w, "Total steps:          %s\n", strconv.FormatFloat(stats.Steps, 'f', -1, 64))
	fmt.Fprintf(w, "Total parsing errors: %d\n", stats.Errors)
	fmt.Fprintf(w, "Error ratio:          %.2f%%\n", stats.Ratio)
}
