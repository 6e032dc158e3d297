package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd creates the root sessionreport command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessionreport",
		Short: "Benchmark run telemetry",
		Long: `sessionreport reconstructs session reports from benchmark run logs,
joins them to the JSON result artifacts written by the harness, and
summarizes accuracy and efficiency per task category.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	debugLogging := rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(NewReportCmd())
	rootCmd.AddCommand(NewViewCmd())
	rootCmd.AddCommand(NewMetricsCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewFormatErrorsCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
