package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArtifacts() map[string]any {
	return map[string]any{
		"aaa_base.json": map[string]any{
			"agent": "base", "problem_id": "misconfig-detection-1", "start_time": 10,
			"results": map[string]any{"Detection Accuracy": "Correct", "TTD": 10.0, "steps": 4},
		},
		"bbb_base.json": map[string]any{
			"agent": "base", "problem_id": "misconfig-detection-2", "start_time": 20,
			"results": map[string]any{"Detection Accuracy": "Incorrect", "TTD": 20.0, "steps": 6},
		},
		"ccc_base.json": map[string]any{
			"agent": "base", "problem_id": "pod-failure-mitigation-1", "start_time": 30,
			"results": map[string]any{"success": true, "TTM": 30.0, "steps": 8},
		},
		"ddd_current.json": map[string]any{
			"agent": "current", "problem_id": "misconfig-detection-1", "start_time": 40,
			"results": map[string]any{"Detection Accuracy": "Correct", "TTD": 5.0, "steps": 2},
		},
	}
}

func TestMetricsCmdText(t *testing.T) {
	dir := writeArtifacts(t, sampleArtifacts())

	out, err := executeCommand(t, NewMetricsCmd(), "--results", dir, "--agent", "base")
	require.NoError(t, err)

	assert.Contains(t, out, "Detection tasks:\n  Number of problems: 2\n  Average Detection Accuracy(%): 50.00\n  Average TTD: 15.00\n  Average steps: 5.00\n")
	assert.Contains(t, out, "Localization tasks:\n  No data\n")
	assert.Contains(t, out, "Root cause analysis tasks:\n  No data\n")
	assert.Contains(t, out, "Mitigation tasks:\n  Number of problems: 1\n  Average Mitigation Success(%): 100.00\n")

	assert.Less(t, strings.Index(out, "Detection tasks"), strings.Index(out, "Localization tasks"))
	assert.Less(t, strings.Index(out, "Root cause analysis tasks"), strings.Index(out, "Mitigation tasks"))
}

func TestMetricsCmdJSON(t *testing.T) {
	dir := writeArtifacts(t, sampleArtifacts())

	out, err := executeCommand(t, NewMetricsCmd(), "--results", dir, "--agent", "current", "-o", "json")
	require.NoError(t, err)

	var summary metrics.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "current", summary.Agent)
	assert.Equal(t, 3, summary.Skipped.OtherAgent)

	detection, ok := summary.Bucket(metrics.Detection)
	require.True(t, ok)
	assert.Equal(t, 1, detection.Count)
}

func TestMetricsCmdUnknownFormat(t *testing.T) {
	_, err := executeCommand(t, NewMetricsCmd(), "--results", t.TempDir(), "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
