package metrics

import (
	"log/slog"
	"strings"

	"github.com/mcpchecker/sessionreport/pkg/artifact"
)

// DefaultFormatErrorMarker is what the harness writes back to the agent when
// it cannot parse a response.
const DefaultFormatErrorMarker = "Error parsing response:"

// FormatErrorOptions selects the artifacts to analyze.
type FormatErrorOptions struct {
	Agent string
	// MinStartTime, when set, skips artifacts whose start_time is not after it.
	MinStartTime *float64
	Marker       string
}

// FormatErrorStats counts how often the harness rejected an agent's responses.
type FormatErrorStats struct {
	Agent  string  `json:"agent"`
	Files  int     `json:"files"`
	Steps  float64 `json:"steps"`
	Errors int     `json:"errors"`
	Ratio  float64 `json:"ratio"`
}

// AnalyzeFormatErrors scans every artifact in dir that belongs to opts.Agent
// and counts environment trace messages carrying the marker against the
// recorded step count.
func AnalyzeFormatErrors(dir string, opts FormatErrorOptions) FormatErrorStats {
	marker := opts.Marker
	if marker == "" {
		marker = DefaultFormatErrorMarker
	}
	stats := FormatErrorStats{Agent: opts.Agent}

	files, err := artifact.Files(dir)
	if err != nil {
		slog.Debug("Failed to list artifacts", "dir", dir, "error", err)
		return stats
	}

	for _, f := range files {
		art, err := artifact.Load(f)
		if err != nil {
			slog.Warn("Failed to process file", "path", f, "error", err)
			continue
		}
		if opts.MinStartTime != nil && float64(art.StartTime) <= *opts.MinStartTime {
			continue
		}
		if art.Agent != opts.Agent {
			continue
		}

		msgs, err := art.Messages()
		if err != nil {
			slog.Warn("Failed to process file", "path", f, "error", err)
			continue
		}

		rejected := 0
		for _, m := range msgs {
			if m.Role == "env" && strings.Contains(m.Content, marker) {
				rejected++
			}
		}

		steps, _ := ParseValue(art.Results["steps"])
		stats.Files++
		stats.Steps += steps
		stats.Errors += rejected
	}

	if stats.Steps > 0 {
		stats.Ratio = float64(stats.Errors) / stats.Steps * 100
	}
	return stats
}
