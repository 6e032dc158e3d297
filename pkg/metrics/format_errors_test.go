package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func TestAnalyzeFormatErrors(t *testing.T) {
	dir := writeArtifacts(t, map[string]any{
		"a.json": map[string]any{
			"agent": "qwen", "start_time": 100.0, "problem_id": "p1",
			"results": map[string]any{"steps": 4},
			"trace": []map[string]any{
				{"role": "assistant", "content": "Error parsing response: ignored, not env"},
				{"role": "env", "content": "Error parsing response: bad block"},
				{"role": "env", "content": "ok"},
			},
		},
		"b.json": map[string]any{
			"agent": "qwen", "start_time": 200.0, "problem_id": "p2",
			"results": map[string]any{"steps": 6},
			"trace": []map[string]any{
				{"role": "env", "content": "Error parsing response: x"},
				{"role": "env", "content": "Error parsing response: y"},
			},
		},
		"c.json": map[string]any{
			"agent": "other", "start_time": 300.0, "problem_id": "p3",
			"results": map[string]any{"steps": 10},
		},
		"d.json": `not json`,
	})

	stats := AnalyzeFormatErrors(dir, FormatErrorOptions{Agent: "qwen"})
	assert.Equal(t, FormatErrorStats{Agent: "qwen", Files: 2, Steps: 10, Errors: 3, Ratio: 30}, stats)

	stats = AnalyzeFormatErrors(dir, FormatErrorOptions{Agent: "qwen", MinStartTime: ptr.To(100.0)})
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 6.0, stats.Steps)
	assert.Equal(t, 2, stats.Errors)
}

func TestAnalyzeFormatErrorsNoMatches(t *testing.T) {
	stats := AnalyzeFormatErrors(t.TempDir(), FormatErrorOptions{Agent: "qwen"})

	assert.Equal(t, 0, stats.Files)
	assert.Zero(t, stats.Ratio)
}

func TestAnalyzeFormatErrorsFractionalSteps(t *testing.T) {
	trace := []map[string]any{{"role": "env", "content": "Error parsing response: x"}}
	dir := writeArtifacts(t, map[string]any{
		"a.json": map[string]any{"agent": "qwen", "problem_id": "p1", "results": map[string]any{"steps": 2.5}, "trace": trace},
		"b.json": map[string]any{"agent": "qwen", "problem_id": "p2", "results": map[string]any{"steps": "2.5"}, "trace": trace},
	})

	stats := AnalyzeFormatErrors(dir, FormatErrorOptions{Agent: "qwen"})
	assert.Equal(t, 5.0, stats.Steps)
	assert.Equal(t, 2, stats.Errors)
	assert.InDelta(t, 40.0, stats.Ratio, 1e-9)
}

func TestAnalyzeFormatErrorsStringStartTime(t *testing.T) {
	dir := writeArtifacts(t, map[string]any{
		"a.json": map[string]any{"agent": "qwen", "problem_id": "p1", "start_time": "50", "results": map[string]any{"steps": 1}},
		"b.json": map[string]any{"agent": "qwen", "problem_id": "p2", "start_time": "150", "results": map[string]any{"steps": 1}},
	})

	stats := AnalyzeFormatErrors(dir, FormatErrorOptions{Agent: "qwen", MinStartTime: ptr.To(100.0)})
	assert.Equal(t, 1, stats.Files)
}
