package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffCmdText(t *testing.T) {
	dir := writeArtifacts(t, sampleArtifacts())

	out, err := executeCommand(t, NewDiffCmd(), "--results", dir, "--base", "base", "--current", "current")
	require.NoError(t, err)

	assert.Contains(t, out, "=== current vs base ===")
	assert.Contains(t, out, "Number of problems: 2 -> 1")
	assert.Regexp(t, `Detection Accuracy\(%\):\s+50\.00 ->\s+100\.00 \(\+50\.00\)`, out)
	assert.Regexp(t, `TTD:\s+15\.00 ->\s+5\.00 \(-10\.00\)`, out)
}

func TestDiffCmdMarkdown(t *testing.T) {
	dir := writeArtifacts(t, sampleArtifacts())

	out, err := executeCommand(t, NewDiffCmd(), "--results", dir, "--base", "base", "--current", "current", "-o", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "### Detection tasks")
	assert.Contains(t, out, "| Metric | base | current | Delta |")
	assert.Contains(t, out, "| Number of problems | 2 | 1 | -1 |")
	assert.Contains(t, out, "| Detection Accuracy(%) | 50.00 | 100.00 | +50.00 |")
	assert.Contains(t, out, "| Number of problems | 1 | 0 | -1 |")
}

func TestDiffCmdRequiresAgents(t *testing.T) {
	_, err := executeCommand(t, NewDiffCmd(), "--results", t.TempDir(), "--base", "base")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current")
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a\|b`, escapeCell("a|b"))
}
