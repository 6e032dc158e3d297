package metrics

import "strings"

// Field is one metric a bucket requires from an artifact's results.
type Field struct {
	Key   string
	Label string
	// Percent fields are reported scaled by 100.
	Percent bool
	// Flag fields are read as booleans and are never missing.
	Flag bool
}

// Bucket is a task category recognized by a substring of the problem id.
type Bucket struct {
	Name   string
	Title  string
	Match  string
	Fields []Field
}

// Matches reports whether problemID belongs to the bucket.
func (b Bucket) Matches(problemID string) bool {
	return strings.Contains(problemID, b.Match)
}

// Extract converts the bucket's fields from results. It reports false if any
// required field is missing or unconvertible.
func (b Bucket) Extract(results map[string]any) ([]float64, bool) {
	values := make([]float64, len(b.Fields))
	for i, f := range b.Fields {
		raw := results[f.Key]
		if f.Flag {
			if truthy(raw) {
				values[i] = 1
			}
			continue
		}
		v, ok := ParseValue(raw)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// Bucket names.
const (
	Detection         = "detection"
	Localization      = "localization"
	RootCauseAnalysis = "root-cause-analysis"
	Mitigation        = "mitigation"
)

// DefaultBuckets returns the benchmark's task categories in report order.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{
			Name:  Detection,
			Title: "Detection tasks",
			Match: "detection",
			Fields: []Field{
				{Key: "Detection Accuracy", Label: "Detection Accuracy", Percent: true},
				{Key: "TTD", Label: "TTD"},
				{Key: "steps", Label: "steps"},
			},
		},
		{
			Name:  Localization,
			Title: "Localization tasks",
			Match: "localization",
			Fields: []Field{
				// reported as stored, not scaled
				{Key: "Localization Accuracy", Label: "Localization Accuracy"},
				{Key: "TTL", Label: "TTL"},
				{Key: "steps", Label: "steps"},
			},
		},
		{
			Name:  RootCauseAnalysis,
			Title: "Root cause analysis tasks",
			Match: "analysis",
			Fields: []Field{
				{Key: "system_level_correct", Label: "System-Level Correct", Percent: true, Flag: true},
				{Key: "fault_type_correct", Label: "Fault-Type Correct", Percent: true, Flag: true},
				{Key: "success", Label: "Root Cause Analysis Success", Percent: true},
				{Key: "TTR", Label: "TTR"},
				{Key: "steps", Label: "steps"},
			},
		},
		{
			Name:  Mitigation,
			Title: "Mitigation tasks",
			Match: "mitigation",
			Fields: []Field{
				{Key: "success", Label: "Mitigation Success", Percent: true},
				{Key: "TTM", Label: "TTM"},
				{Key: "steps", Label: "steps"},
			},
		},
	}
}
