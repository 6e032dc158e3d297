// Package runs discovers harness run directories and builds one correlated
// report from all of their logs.
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcpchecker/sessionreport/pkg/artifact"
	"github.com/mcpchecker/sessionreport/pkg/logscan"
	"github.com/mcpchecker/sessionreport/pkg/report"
	"golang.org/x/sync/errgroup"
)

// Layout describes where a run keeps its log.
type Layout struct {
	Prefix   string `json:"prefix"`
	FilesDir string `json:"filesDir"`
	LogFile  string `json:"logFile"`
}

// DefaultLayout returns the directory layout written by the harness's experiment tracker.
func DefaultLayout() Layout {
	return Layout{
		Prefix:   "run-",
		FilesDir: "files",
		LogFile:  "output.log",
	}
}

// Run is one discovered run directory.
type Run struct {
	Name    string
	Dir     string
	LogPath string
}

// Options controls aggregation.
type Options struct {
	Layout  Layout
	Scanner *logscan.Scanner
	// Workers bounds how many runs are parsed at once. Values below 2 parse sequentially.
	Workers int
}

// Discover returns the runs under root in name order. Directories without a
// files subdirectory are skipped. A missing root yields no runs.
func Discover(root string, layout Layout) []Run {
	entries, err := os.ReadDir(root)
	if err != nil {
		slog.Debug("Run root not readable", "root", root, "error", err)
		return nil
	}

	var found []Run
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), layout.Prefix) {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		filesDir := filepath.Join(dir, layout.FilesDir)
		info, err := os.Stat(filesDir)
		if err != nil || !info.IsDir() {
			slog.Debug("Skipping run without files directory", "run", entry.Name())
			continue
		}

		found = append(found, Run{
			Name:    entry.Name(),
			Dir:     dir,
			LogPath: filepath.Join(filesDir, layout.LogFile),
		})
	}
	return found
}

// Aggregate parses and correlates every run under root against the
// artifacts in artifactDir. Records are returned in run discovery order.
func Aggregate(ctx context.Context, root, artifactDir string, opts Options) ([]*report.SessionRecord, error) {
	if opts.Scanner == nil {
		return nil, fmt.Errorf("a scanner is required")
	}

	found := Discover(root, opts.Layout)
	correlator := artifact.NewCorrelator(artifact.BuildIndex(artifactDir))

	perRun := make([][]*report.SessionRecord, len(found))

	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 2 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, run := range found {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := ParseRun(run, opts.Scanner, correlator)
			if err != nil {
				// an unreadable log must not abort the other runs
				slog.Warn("Skipping unreadable run log", "run", run.Name, "error", err)
				return nil
			}
			perRun[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]*report.SessionRecord, 0)
	for _, records := range perRun {
		all = append(all, records...)
	}

	slog.Debug("Aggregated runs", "runs", len(found), "records", len(all))
	return all, nil
}

// ParseRun parses one run's log and correlates its records. A run whose log
// file does not exist contributes no records.
func ParseRun(run Run, scanner *logscan.Scanner, correlator *artifact.Correlator) ([]*report.SessionRecord, error) {
	records, err := logscan.ParseFile(run.LogPath, scanner)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.Name, err)
	}

	correlator.Correlate(records)
	slog.Debug("Parsed run", "run", run.Name, "records", len(records))
	return records, nil
}
