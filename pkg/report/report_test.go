package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

// sampleRecords returns a set of sample records for testing.
func sampleRecords() []*SessionRecord {
	return []*SessionRecord{
		{
			SessionID: "abc-123",
			ProblemID: "misconfig-detection-1",
			Agent:     ptr.To("deepseek-r1"),
			Results:   map[string]any{"steps": 5.0},
		},
		{
			SessionID:     "def-456",
			ProblemID:     "misconfig-localization-1",
			InvalidFormat: true,
			JSONError:     ptr.To("No matching JSON"),
		},
		{
			SessionID: "0a1-b2c",
			ProblemID: "pod-failure-mitigation-1",
			Error:     ptr.To("timeout"),
			Agent:     ptr.To("deepseek-r1"),
			Results:   map[string]any{"success": false},
		},
	}
}

func TestCalculateStats(t *testing.T) {
	stats := CalculateStats("final_report.json", sampleRecords())

	assert.Equal(t, 3, stats.SessionsTotal)
	assert.Equal(t, 2, stats.SessionsSucceeded)
	assert.Equal(t, 1, stats.SessionsFailed)
	assert.Equal(t, 1, stats.InvalidFormat)
	assert.Equal(t, 2, stats.Correlated)
	assert.Equal(t, 1, stats.JSONErrors)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, stats.CorrelationRate, 1e-9)
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := CalculateStats("empty.json", nil)

	assert.Equal(t, 0, stats.SessionsTotal)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.CorrelationRate)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	require.NoError(t, Save(path, sampleRecords()))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "abc-123", loaded[0].SessionID)
	assert.Equal(t, "deepseek-r1", *loaded[0].Agent)
	assert.Equal(t, "timeout", *loaded[2].Error)
}

func TestSaveWritesNullOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	records := []*SessionRecord{{SessionID: "abc-123", ProblemID: "demo-1"}}

	require.NoError(t, Save(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	for _, key := range []string{"agent", "results", "error"} {
		v, ok := raw[0][key]
		assert.True(t, ok, "key %q should be present", key)
		assert.Nil(t, v, "key %q should be null", key)
	}
	_, ok := raw[0]["json_error"]
	assert.False(t, ok, "json_error should be omitted when unset")
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, Save(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/report.json")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	tt := map[string]struct {
		filter string
		want   int
	}{
		"empty filter keeps all": {filter: "", want: 3},
		"substring":              {filter: "detection", want: 1},
		"case insensitive":       {filter: "MISCONFIG", want: 2},
		"no match":               {filter: "analysis", want: 0},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			assert.Len(t, Filter(sampleRecords(), tc.filter), tc.want)
		})
	}
}

func TestFailureReason(t *testing.T) {
	records := sampleRecords()

	assert.Equal(t, "", FailureReason(records[0]))
	assert.Equal(t, "No matching JSON", FailureReason(records[1]))
	assert.Equal(t, "timeout", FailureReason(records[2]))
	assert.Equal(t, "invalid solution format", FailureReason(&SessionRecord{InvalidFormat: true}))
}
