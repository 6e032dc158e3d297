// Package report provides utilities for loading, saving, filtering, and
// summarizing correlated session reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the name of the report written next to the run directories.
const DefaultFileName = "final_report.json"

// Stats holds computed statistics for a set of session records.
type Stats struct {
	ReportFile        string  `json:"reportFile"`
	SessionsTotal     int     `json:"sessionsTotal"`
	SessionsSucceeded int     `json:"sessionsSucceeded"`
	SessionsFailed    int     `json:"sessionsFailed"`
	InvalidFormat     int     `json:"invalidFormat"`
	Correlated        int     `json:"correlated"`
	JSONErrors        int     `json:"jsonErrors"`
	SuccessRate       float64 `json:"successRate"`
	CorrelationRate   float64 `json:"correlationRate"`
}

// Load reads a JSON report file and returns the parsed records.
func Load(path string) ([]*SessionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var records []*SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}

	return records, nil
}

// Save writes records to path as indented JSON, creating parent directories.
func Save(path string, records []*SessionRecord) error {
	if records == nil {
		records = []*SessionRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// Filter returns the subset of records whose problem id contains the filter substring.
func Filter(records []*SessionRecord, filter string) []*SessionRecord {
	if filter == "" {
		return records
	}

	filter = strings.ToLower(filter)
	filtered := make([]*SessionRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.ProblemID), filter) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// CalculateStats computes statistics from session records.
func CalculateStats(reportFile string, records []*SessionRecord) Stats {
	stats := Stats{
		ReportFile:    reportFile,
		SessionsTotal: len(records),
	}

	for _, r := range records {
		if r.Succeeded() {
			stats.SessionsSucceeded++
		} else {
			stats.SessionsFailed++
		}
		if r.InvalidFormat {
			stats.InvalidFormat++
		}
		if r.JSONError != nil {
			stats.JSONErrors++
		} else if r.Correlated() {
			stats.Correlated++
		}
	}

	if stats.SessionsTotal > 0 {
		stats.SuccessRate = float64(stats.SessionsSucceeded) / float64(stats.SessionsTotal)
		stats.CorrelationRate = float64(stats.Correlated) / float64(stats.SessionsTotal)
	}

	return stats
}

// FailureReason returns the most relevant problem recorded for a session.
func FailureReason(r *SessionRecord) string {
	if r.Error != nil {
		return *r.Error
	}
	if r.JSONError != nil {
		return *r.JSONError
	}
	if r.InvalidFormat {
		return "invalid solution format"
	}
	return ""
}
