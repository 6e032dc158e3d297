package runs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcpchecker/sessionreport/pkg/logscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRun creates root/name/files/output.log with the given content. An
// empty content skips the log file but still creates the files directory.
func writeRun(t *testing.T, root, name, content string) {
	t.Helper()

	filesDir := filepath.Join(root, name, "files")
	require.NoError(t, os.MkdirAll(filesDir, 0755))
	if content == "" {
		return
	}
	require.NoError(t, os.WriteFile(filepath.Join(filesDir, "output.log"), []byte(content), 0644))
}

func sessionLog(sessionID, problemID string) string {
	return fmt.Sprintf("Session ID: %s\nSuccessfully processed pid %s.\n", sessionID, problemID)
}

func defaultOptions(workers int) Options {
	return Options{
		Layout:  DefaultLayout(),
		Scanner: logscan.MustNewScanner(logscan.DefaultMarkers()),
		Workers: workers,
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run-b", sessionLog("bbb-222", "demo-2"))
	writeRun(t, root, "run-a", sessionLog("aaa-111", "demo-1"))
	writeRun(t, root, "latest-run", sessionLog("ccc-333", "demo-3"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "run-nofiles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "run-file"), nil, 0644))

	found := Discover(root, DefaultLayout())

	require.Len(t, found, 2)
	assert.Equal(t, "run-a", found[0].Name)
	assert.Equal(t, filepath.Join(root, "run-a", "files", "output.log"), found[0].LogPath)
	assert.Equal(t, "run-b", found[1].Name)
}

func TestDiscoverMissingRoot(t *testing.T) {
	assert.Empty(t, Discover("/nonexistent/wandb", DefaultLayout()))
}

func TestAggregate(t *testing.T) {
	root := t.TempDir()
	results := t.TempDir()

	writeRun(t, root, "run-1", sessionLog("aaa-111", "demo-1")+sessionLog("bbb-222", "demo-2"))
	writeRun(t, root, "run-2", "")
	writeRun(t, root, "run-3", sessionLog("ccc-333", "demo-3"))
	require.NoError(t, os.WriteFile(filepath.Join(results, "aaa-111_out.json"), []byte(`{"agent":"x","results":{"steps":2}}`), 0644))

	records, err := Aggregate(context.Background(), root, results, defaultOptions(1))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "aaa-111", records[0].SessionID)
	require.NotNil(t, records[0].Agent)
	assert.Equal(t, "x", *records[0].Agent)

	assert.Equal(t, "bbb-222", records[1].SessionID)
	require.NotNil(t, records[1].JSONError)
	assert.Equal(t, "No matching JSON", *records[1].JSONError)

	assert.Equal(t, "ccc-333", records[2].SessionID)
}

func TestAggregateParallelMatchesSequential(t *testing.T) {
	root := t.TempDir()
	results := t.TempDir()
	for i := 0; i < 12; i++ {
		writeRun(t, root, fmt.Sprintf("run-%02d", i), sessionLog(fmt.Sprintf("a%02d-000", i), fmt.Sprintf("demo-%d", i)))
	}

	sequential, err := Aggregate(context.Background(), root, results, defaultOptions(1))
	require.NoError(t, err)

	parallel, err := Aggregate(context.Background(), root, results, defaultOptions(4))
	require.NoError(t, err)

	assert.Len(t, parallel, 12)
	assert.Equal(t, sequential, parallel)
}

func TestAggregateMissingRoot(t *testing.T) {
	records, err := Aggregate(context.Background(), "/nonexistent/wandb", t.TempDir(), defaultOptions(1))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestAggregateCancelled(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run-1", sessionLog("aaa-111", "demo-1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Aggregate(ctx, root, t.TempDir(), defaultOptions(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateRequiresScanner(t *testing.T) {
	_, err := Aggregate(context.Background(), t.TempDir(), t.TempDir(), Options{Layout: DefaultLayout()})
	assert.Error(t, err)
}

func TestAggregateKeepsSessionsAroundLongLine(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run-1", sessionLog("abc-123", "demo-1")+
		strings.Repeat("x", 11*1024*1024)+"\n"+
		sessionLog("def-456", "demo-2"))

	records, err := Aggregate(context.Background(), root, t.TempDir(), defaultOptions(1))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "demo-1", records[0].ProblemID)
	assert.Equal(t, "demo-2", records[1].ProblemID)
}
