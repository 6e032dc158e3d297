package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mcpchecker/sessionreport/pkg/artifact"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check result artifacts against the artifact schema",
		Long: `Check that every *.json file in the results directory carries the
fields the report and metrics commands read: agent, results, problem_id
and start_time.

Exits with code 1 if any artifact is invalid.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := firstNonEmpty(resultsDir, cfg.Artifacts.Dir)

			results, err := artifact.ValidateDir(dir)
			if err != nil {
				return fmt.Errorf("failed to list artifacts in %s: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			red := color.New(color.FgRed)
			green := color.New(color.FgGreen)

			invalid := 0
			for _, res := range results {
				if res.Valid() {
					continue
				}
				invalid++
				_, _ = red.Fprintf(out, "✗ %s: %v\n", res.File, res.Err)
			}

			if invalid > 0 {
				_, _ = red.Fprintf(out, "\n%d of %d artifacts invalid\n", invalid, len(results))
				return fmt.Errorf("%d invalid artifacts", invalid)
			}

			_, _ = green.Fprintf(out, "✓ %d artifacts valid\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory containing result artifacts (default from config)")

	return cmd
}
