package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRefPattern matches ${VAR} and ${VAR:-default}.
var envRefPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// maxExpansions bounds nested expansion of defaults that reference other variables.
const maxExpansions = 10

// expandEnv replaces environment references in value. ${VAR} must be set
// and non-empty; ${VAR:-default} falls back to default.
func expandEnv(value string) (string, error) {
	for range maxExpansions {
		var missing []string
		next := envRefPattern.ReplaceAllStringFunc(value, func(ref string) string {
			m := envRefPattern.FindStringSubmatch(ref)
			if v, ok := os.LookupEnv(m[1]); ok && v != "" {
				return v
			}
			if m[2] != "" {
				return m[3]
			}
			missing = append(missing, ref)
			return ref
		})
		if len(missing) > 0 {
			return "", fmt.Errorf("required environment variable(s) not set: %s", strings.Join(missing, ", "))
		}
		if next == value {
			return next, nil
		}
		value = next
	}
	return value, nil
}

// expandPaths expands environment references in every path setting.
func (c *Config) expandPaths() error {
	for name, field := range map[string]*string{
		"runs.root":     &c.Runs.Root,
		"runs.output":   &c.Runs.Output,
		"artifacts.dir": &c.Artifacts.Dir,
	} {
		expanded, err := expandEnv(*field)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = expanded
	}
	return nil
}
