package logscan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/mcpchecker/sessionreport/pkg/report"
	"k8s.io/utils/ptr"
)

// session is the state accumulated for the currently open session.
type session struct {
	id            string
	problemID     string
	invalidFormat bool
}

// Tracker walks a log line by line and emits a record every time a session
// is finalized by a success or failure marker. A Tracker is not safe for
// concurrent use; use one per log.
type Tracker struct {
	scanner *Scanner
	current session
	records []*report.SessionRecord
	dropped int
}

// NewTracker returns a Tracker that recognizes lines with scanner.
func NewTracker(scanner *Scanner) *Tracker {
	return &Tracker{scanner: scanner}
}

// Run processes lines and returns the records emitted so far, including
// those from earlier calls.
func (t *Tracker) Run(lines []string) []*report.SessionRecord {
	for i := range lines {
		line := strings.TrimRightFunc(lines[i], unicode.IsSpace)
		for _, tok := range t.scanner.Scan(line) {
			t.apply(tok, lines, i)
		}
	}
	return t.records
}

// Records returns the records emitted so far.
func (t *Tracker) Records() []*report.SessionRecord {
	return t.records
}

// Dropped returns how many sessions were finalized without a session id.
// Such sessions produce no record since they cannot be correlated.
func (t *Tracker) Dropped() int {
	return t.dropped
}

func (t *Tracker) apply(tok Token, lines []string, i int) {
	switch tok.Kind {
	case KindSession:
		t.current.id = tok.SessionID
	case KindEvaluationHeader:
		if t.scanner.BlockHasInvalidFormat(lines, i) {
			t.current.invalidFormat = true
		}
	case KindSuccess:
		t.current.problemID = tok.ProblemID
		t.finalize(nil, i)
	case KindFailure:
		t.current.problemID = tok.ProblemID
		t.finalize(ptr.To(tok.Message), i)
	}
}

// finalize emits the open session, if it has an id, and resets the accumulator.
func (t *Tracker) finalize(errMsg *string, line int) {
	if t.current.id != "" {
		t.records = append(t.records, &report.SessionRecord{
			SessionID:     t.current.id,
			ProblemID:     t.current.problemID,
			InvalidFormat: t.current.invalidFormat,
			Error:         errMsg,
		})
	} else {
		t.dropped++
		slog.Debug("Dropping session without id", "line", line+1, "problem_id", t.current.problemID)
	}
	t.current = session{}
}

// ParseLog reads r to the end and returns the records it contains.
func ParseLog(r io.Reader, scanner *Scanner) ([]*report.SessionRecord, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	tracker := NewTracker(scanner)
	records := tracker.Run(lines)
	if tracker.Dropped() > 0 {
		slog.Debug("Sessions finalized without id", "count", tracker.Dropped())
	}
	return records, nil
}

// ParseFile parses the log at path. A missing or non-regular file yields no
// records and no error.
func ParseFile(path string, scanner *Scanner) ([]*report.SessionRecord, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		slog.Debug("Log file not found", "path", path)
		return []*report.SessionRecord{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer file.Close()

	records, err := ParseLog(file, scanner)
	if err != nil {
		return nil, fmt.Errorf("failed to read log %s: %w", path, err)
	}
	return records, nil
}

// readLines splits r into lines without a length limit. Line terminators
// (\n or \r\n) are removed.
func readLines(r io.Reader) ([]string, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
