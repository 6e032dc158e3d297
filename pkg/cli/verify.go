package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/spf13/cobra"
)

type bucketCheck struct {
	bucket    metrics.BucketStats
	metric    metrics.MetricStat
	threshold float64
	minCount  int
}

func (c bucketCheck) countMet() bool {
	return c.bucket.Count >= c.minCount
}

func (c bucketCheck) passed() bool {
	return c.countMet() && c.metric.Value() >= c.threshold
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		resultsDir string
		agent      string
		minCount   int
		thresholds = map[string]*float64{
			metrics.Detection:         new(float64),
			metrics.Localization:      new(float64),
			metrics.RootCauseAnalysis: new(float64),
			metrics.Mitigation:        new(float64),
		}
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify task category metrics meet thresholds",
		Long: `Verify that the headline metric of each task category meets a minimum.

The headline metric is the first one reported for the category: detection
accuracy, localization accuracy, root cause analysis system-level correctness,
and mitigation success. Thresholds use the reported units (percent where the
metric is shown as a percentage). Categories without a threshold are not checked.

Exits with code 0 if all thresholds are met, code 1 otherwise.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			summary := metrics.AggregateDir(
				firstNonEmpty(resultsDir, cfg.Artifacts.Dir),
				firstNonEmpty(agent, cfg.Metrics.Agent),
			)

			var checks []bucketCheck
			for _, b := range summary.Buckets {
				if !cmd.Flags().Changed(flagForBucket(b.Name)) || len(b.Metrics) == 0 {
					continue
				}
				checks = append(checks, bucketCheck{
					bucket:    b,
					metric:    b.Metrics[0],
					threshold: *thresholds[b.Name],
					minCount:  minCount,
				})
			}

			passed := outputVerifyResults(cmd.OutOrStdout(), summary.Agent, checks)
			if !passed {
				// silent error (SilenceErrors: true), sets exit code 1
				return fmt.Errorf("thresholds not met")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent whose artifacts are verified (default from config)")
	cmd.Flags().IntVar(&minCount, "min-count", 1, "Minimum number of problems a checked category must have")
	cmd.Flags().Float64Var(thresholds[metrics.Detection], "detection", 0, "Minimum detection accuracy (%)")
	cmd.Flags().Float64Var(thresholds[metrics.Localization], "localization", 0, "Minimum localization accuracy")
	cmd.Flags().Float64Var(thresholds[metrics.RootCauseAnalysis], "analysis", 0, "Minimum root cause analysis system-level correctness (%)")
	cmd.Flags().Float64Var(thresholds[metrics.Mitigation], "mitigation", 0, "Minimum mitigation success (%)")

	return cmd
}

func flagForBucket(name string) string {
	if name == metrics.RootCauseAnalysis {
		return "analysis"
	}
	return name
}

func outputVerifyResults(w io.Writer, agent string, checks []bucketCheck) bool {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)

	_, _ = bold.Fprintf(w, "=== Threshold Verification (%s) ===\n", agent)
	fmt.Fprintln(w)

	if len(checks) == 0 {
		fmt.Fprintln(w, "No thresholds set")
	}

	passed := true
	for _, c := range checks {
		label := fmt.Sprintf("%s %s:", c.bucket.Title, metricLabel(c.metric))
		switch {
		case !c.countMet():
			_, _ = red.Fprintf(w, "%-50s %d problems < %d ✗\n", label, c.bucket.Count, c.minCount)
		case c.passed():
			_, _ = green.Fprintf(w, "%-50s %.2f >= %.2f ✓\n", label, c.metric.Value(), c.threshold)
		default:
			_, _ = red.Fprintf(w, "%-50s %.2f < %.2f ✗\n", label, c.metric.Value(), c.threshold)
		}
		passed = passed && c.passed()
	}

	fmt.Fprintln(w)
	if passed {
		_, _ = green.Fprintln(w, "Result: PASSED")
	} else {
		_, _ = red.Fprintln(w, "Result: FAILED")
	}
	return passed
}
