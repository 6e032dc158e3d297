// Package artifact reads the JSON result files written by the benchmark
// harness and joins them to session records.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Artifact is the result file the harness writes for one session.
type Artifact struct {
	Agent     string          `json:"agent"`
	Results   map[string]any  `json:"results"`
	ProblemID string          `json:"problem_id"`
	StartTime Timestamp       `json:"start_time"`
	Trace     json.RawMessage `json:"trace,omitempty"`
}

// Timestamp is a unix start time. It decodes from a JSON number or a numeric
// string; null and unconvertible values decode as 0.
type Timestamp float64

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*ts = 0
	switch v := raw.(type) {
	case float64:
		*ts = Timestamp(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*ts = Timestamp(f)
		}
	}
	return nil
}

// TraceMessage is one entry of an artifact's conversation trace.
type TraceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages decodes the artifact's trace. A missing trace yields no messages.
func (a *Artifact) Messages() ([]TraceMessage, error) {
	if len(a.Trace) == 0 || string(a.Trace) == "null" {
		return nil, nil
	}

	var msgs []TraceMessage
	if err := json.Unmarshal(a.Trace, &msgs); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	return msgs, nil
}

// Load reads and parses the artifact at path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact JSON: %w", err)
	}
	return &a, nil
}

// Files returns the paths of all *.json files in dir, sorted by name. A
// missing directory yields no files.
func Files(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}
