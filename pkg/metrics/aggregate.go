// Package metrics reduces a directory of result artifacts into per task
// category statistics.
package metrics

import (
	"log/slog"
	"os"

	"github.com/mcpchecker/sessionreport/pkg/artifact"
)

// MetricStat is the mean of one field across a bucket.
type MetricStat struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Mean    float64 `json:"mean"`
	Percent bool    `json:"percent"`
}

// Value returns the mean as it is reported, scaled by 100 for percent fields.
func (m MetricStat) Value() float64 {
	if m.Percent {
		return m.Mean * 100
	}
	return m.Mean
}

// BucketStats holds the aggregate for one task category.
type BucketStats struct {
	Name    string       `json:"name"`
	Title   string       `json:"title"`
	Count   int          `json:"count"`
	Metrics []MetricStat `json:"metrics"`
}

// Metric returns the stat for the given result key.
func (b BucketStats) Metric(key string) (MetricStat, bool) {
	for _, m := range b.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricStat{}, false
}

// SkipCounts records why artifacts did not contribute.
type SkipCounts struct {
	Unparseable      int `json:"unparseable"`
	OtherAgent       int `json:"otherAgent"`
	MissingProblemID int `json:"missingProblemId"`
	Duplicate        int `json:"duplicate"`
}

// Summary is the result of aggregating an artifact corpus for one agent.
type Summary struct {
	Agent   string        `json:"agent"`
	Buckets []BucketStats `json:"buckets"`
	Skipped SkipCounts    `json:"skipped"`
}

// Bucket returns the stats for the named bucket.
func (s *Summary) Bucket(name string) (BucketStats, bool) {
	for _, b := range s.Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return BucketStats{}, false
}

// Aggregator accumulates artifacts for one agent. The first artifact seen
// for a problem id wins; later ones are discarded.
type Aggregator struct {
	agent   string
	buckets []Bucket
	seen    map[string]struct{}
	rows    [][][]float64
	skipped SkipCounts
}

// NewAggregator returns an Aggregator for agent over the default buckets.
func NewAggregator(agent string) *Aggregator {
	return NewAggregatorWithBuckets(agent, DefaultBuckets())
}

// NewAggregatorWithBuckets returns an Aggregator over custom buckets.
func NewAggregatorWithBuckets(agent string, buckets []Bucket) *Aggregator {
	return &Aggregator{
		agent:   agent,
		buckets: buckets,
		seen:    make(map[string]struct{}),
		rows:    make([][][]float64, len(buckets)),
	}
}

// Add ingests one artifact and reports whether it claimed its problem id.
func (a *Aggregator) Add(art *artifact.Artifact) bool {
	if art.Agent != a.agent {
		a.skipped.OtherAgent++
		return false
	}
	if art.ProblemID == "" {
		a.skipped.MissingProblemID++
		return false
	}
	if _, dup := a.seen[art.ProblemID]; dup {
		a.skipped.Duplicate++
		return false
	}
	a.seen[art.ProblemID] = struct{}{}

	for i, b := range a.buckets {
		if !b.Matches(art.ProblemID) {
			continue
		}
		values, ok := b.Extract(art.Results)
		if !ok {
			slog.Debug("Dropping artifact with missing metrics", "bucket", b.Name, "problem_id", art.ProblemID)
			continue
		}
		a.rows[i] = append(a.rows[i], values)
	}
	return true
}

// AddFile loads and ingests the artifact at path. Unparseable files are skipped.
func (a *Aggregator) AddFile(path string) bool {
	art, err := artifact.Load(path)
	if err != nil {
		a.skipped.Unparseable++
		slog.Debug("Skipping unparseable artifact", "path", path, "error", err)
		return false
	}
	return a.Add(art)
}

// Summary computes the per-bucket means of everything added so far.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		Agent:   a.agent,
		Buckets: make([]BucketStats, len(a.buckets)),
		Skipped: a.skipped,
	}

	for i, b := range a.buckets {
		rows := a.rows[i]
		stats := BucketStats{
			Name:    b.Name,
			Title:   b.Title,
			Count:   len(rows),
			Metrics: make([]MetricStat, len(b.Fields)),
		}
		for j, f := range b.Fields {
			stats.Metrics[j] = MetricStat{
				Key:     f.Key,
				Label:   f.Label,
				Mean:    column(rows, j),
				Percent: f.Percent,
			}
		}
		s.Buckets[i] = stats
	}
	return s
}

// AggregateDir aggregates every *.json artifact in dir for agent, in file
// name order. A missing directory yields an empty summary.
func AggregateDir(dir, agent string) Summary {
	agg := NewAggregator(agent)

	if _, err := os.Stat(dir); err != nil {
		slog.Debug("Artifact directory not readable", "dir", dir, "error", err)
		return agg.Summary()
	}

	files, err := artifact.Files(dir)
	if err != nil {
		slog.Debug("Failed to list artifacts", "dir", dir, "error", err)
		return agg.Summary()
	}

	for _, f := range files {
		agg.AddFile(f)
	}
	return agg.Summary()
}

// column returns the mean of position idx across rows, or 0 for no rows.
func column(rows [][]float64, idx int) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rows {
		sum += r[idx]
	}
	return sum / float64(len(rows))
}
