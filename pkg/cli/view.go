package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/report"
	"github.com/spf13/cobra"
)

// NewViewCmd creates the view command for rendering a session report.
func NewViewCmd() *cobra.Command {
	var (
		problemFilter string
		failedOnly    bool
		showResults   = true
	)

	cmd := &cobra.Command{
		Use:   "view <report-file>",
		Short: "Pretty-print a session report",
		Long: `Render the JSON report produced by "sessionreport report" in a human-friendly format.

Examples:
  sessionreport view wandb/final_report.json
  sessionreport view --problem detection --results=false wandb/final_report.json
  sessionreport view --failed wandb/final_report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := report.Load(args[0])
			if err != nil {
				return err
			}

			filtered := report.Filter(records, problemFilter)
			if failedOnly {
				filtered = withProblems(filtered)
			}
			if len(filtered) == 0 {
				if failedOnly {
					return errors.New("no sessions with problems found")
				}
				if problemFilter == "" {
					return errors.New("no sessions found in report")
				}
				return fmt.Errorf("no sessions matched filter %q", problemFilter)
			}

			out := cmd.OutOrStdout()
			for idx, r := range filtered {
				if idx > 0 {
					fmt.Fprintln(out)
				}
				printSessionRecord(out, r, showResults)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&problemFilter, "problem", "", "Only show sessions whose problem id contains this value")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show sessions that failed, had an invalid format, or have no artifact")
	cmd.Flags().BoolVar(&showResults, "results", showResults, "Include the artifact metrics of each session")

	return cmd
}

// withProblems keeps the records that report.FailureReason flags.
func withProblems(records []*report.SessionRecord) []*report.SessionRecord {
	var out []*report.SessionRecord
	for _, r := range records {
		if report.FailureReason(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

func printSessionRecord(w io.Writer, r *report.SessionRecord, showResults bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	_, _ = bold.Fprintf(w, "Session: %s\n", r.SessionID)
	fmt.Fprintf(w, "  Problem: %s\n", r.ProblemID)
	if r.Agent != nil {
		fmt.Fprintf(w, "  Agent: %s\n", *r.Agent)
	}

	if r.Succeeded() {
		_, _ = green.Fprintln(w, "  Status: PROCESSED")
	} else {
		_, _ = red.Fprintf(w, "  Status: FAILED (%s)\n", *r.Error)
	}
	if r.InvalidFormat {
		_, _ = yellow.Fprintln(w, "  Invalid solution format detected")
	}
	if r.JSONError != nil {
		_, _ = yellow.Fprintf(w, "  Artifact: %s\n", *r.JSONError)
	}

	if showResults && len(r.Results) > 0 {
		fmt.Fprintln(w, "  Results:")
		keys := make([]string, 0, len(r.Results))
		for k := range r.Results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "    • %s: %v\n", k, r.Results[k])
		}
	}
}
