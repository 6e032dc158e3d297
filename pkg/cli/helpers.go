package cli

import (
	"github.com/mcpchecker/sessionreport/pkg/config"
	"github.com/spf13/cobra"
)

// loadConfig returns the config named by the --config flag, or the defaults
// when the flag is unset or the command runs outside the root command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return config.Default(), nil
	}
	return config.FromFile(path)
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
