package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/spf13/cobra"
)

// metricDelta compares one metric between two agents.
type metricDelta struct {
	Label   string
	Base    float64
	Current float64
}

func (d metricDelta) delta() float64 {
	return d.Current - d.Base
}

type bucketDelta struct {
	Title        string
	BaseCount    int
	CurrentCount int
	Metrics      []metricDelta
}

// NewDiffCmd creates the diff command
func NewDiffCmd() *cobra.Command {
	var (
		resultsDir   string
		baseAgent    string
		currentAgent string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare task category metrics between two agents",
		Long: `Aggregate the artifacts of two agents and show the change of every
task category metric from the base agent to the current agent.

Examples:
  sessionreport diff --base deepseek-r1 --current gpt-4o-mini
  sessionreport diff --base deepseek-r1 --current gpt-4o-mini --output markdown`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := firstNonEmpty(resultsDir, cfg.Artifacts.Dir)

			base := metrics.AggregateDir(dir, baseAgent)
			current := metrics.AggregateDir(dir, currentAgent)
			deltas := compareSummaries(base, current)

			switch outputFormat {
			case "text":
				printDiffText(cmd.OutOrStdout(), baseAgent, currentAgent, deltas)
			case "markdown":
				printDiffMarkdown(cmd.OutOrStdout(), baseAgent, currentAgent, deltas)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")
	cmd.Flags().StringVar(&baseAgent, "base", "", "Agent used as the baseline")
	cmd.Flags().StringVar(&currentAgent, "current", "", "Agent compared against the baseline")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, markdown)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}

// compareSummaries pairs buckets by name. Buckets run in the same fixed order
// for every agent.
func compareSummaries(base, current metrics.Summary) []bucketDelta {
	deltas := make([]bucketDelta, 0, len(base.Buckets))
	for _, b := range base.Buckets {
		c, ok := current.Bucket(b.Name)
		if !ok {
			continue
		}
		d := bucketDelta{
			Title:        b.Title,
			BaseCount:    b.Count,
			CurrentCount: c.Count,
		}
		for _, m := range b.Metrics {
			cm, _ := c.Metric(m.Key)
			d.Metrics = append(d.Metrics, metricDelta{
				Label:   metricLabel(m),
				Base:    m.Value(),
				Current: cm.Value(),
			})
		}
		deltas = append(deltas, d)
	}
	return deltas
}

func printDiffText(w io.Writer, base, current string, deltas []bucketDelta) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = bold.Fprintf(w, "=== %s vs %s ===\n", current, base)
	for _, d := range deltas {
		fmt.Fprintln(w)
		_, _ = bold.Fprintf(w, "%s:\n", d.Title)
		fmt.Fprintf(w, "  Number of problems: %d -> %d\n", d.BaseCount, d.CurrentCount)
		for _, m := range d.Metrics {
			line := fmt.Sprintf("  %-40s %8.2f -> %8.2f (%+.2f)\n", m.Label+":", m.Base, m.Current, m.delta())
			switch {
			case m.delta() > 0:
				_, _ = green.Fprint(w, line)
			case m.delta() < 0:
				_, _ = red.Fprint(w, line)
			default:
				fmt.Fprint(w, line)
			}
		}
	}
}

func printDiffMarkdown(w io.Writer, base, current string, deltas []bucketDelta) {
	fmt.Fprintf(w, "## %s vs %s\n", current, base)
	for _, d := range deltas {
		fmt.Fprintf(w, "\n### %s\n\n", d.Title)
		fmt.Fprintf(w, "| Metric | %s | %s | Delta |\n", escapeCell(base), escapeCell(current))
		fmt.Fprintln(w, "|---|---:|---:|---:|")
		fmt.Fprintf(w, "| Number of problems | %d | %d | %+d |\n", d.BaseCount, d.CurrentCount, d.CurrentCount-d.BaseCount)
		for _, m := range d.Metrics {
			fmt.Fprintf(w, "| %s | %.2f | %.2f | %+.2f |\n", escapeCell(m.Label), m.Base, m.Current, m.delta())
		}
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
