// Package logscan turns a line-oriented harness log into finalized session records.
package logscan

import (
	"fmt"
	"regexp"
	"strings"
)

// LineKind identifies what a log line carries.
type LineKind int

const (
	KindOther LineKind = iota
	KindSession
	KindEvaluationHeader
	KindInvalidFormat
	KindSuccess
	KindFailure
)

func (k LineKind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindEvaluationHeader:
		return "evaluation-header"
	case KindInvalidFormat:
		return "invalid-format"
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "other"
	}
}

// Token is one recognized element of a line. Only the fields relevant to
// Kind are populated.
type Token struct {
	Kind      LineKind
	SessionID string
	ProblemID string
	Message   string
}

// Markers holds the literal label strings the harness writes into its logs.
type Markers struct {
	SessionLabel     string `json:"sessionLabel"`
	EvaluationHeader string `json:"evaluationHeader"`
	BlockPrefix      string `json:"blockPrefix"`
	InvalidFormat    string `json:"invalidFormat"`
	SuccessLabel     string `json:"successLabel"`
	FailureLabel     string `json:"failureLabel"`
	ErrorLabel       string `json:"errorLabel"`
}

// DefaultMarkers returns the labels written by the benchmark harness.
func DefaultMarkers() Markers {
	return Markers{
		SessionLabel:     "Session ID:",
		EvaluationHeader: "== Evaluation ==",
		BlockPrefix:      "== ",
		InvalidFormat:    "Invalid solution format",
		SuccessLabel:     "Successfully processed pid",
		FailureLabel:     "Failed to process pid",
		ErrorLabel:       "Error:",
	}
}

// Validate checks that every marker is set.
func (m Markers) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"sessionLabel", m.SessionLabel},
		{"evaluationHeader", m.EvaluationHeader},
		{"blockPrefix", m.BlockPrefix},
		{"invalidFormat", m.InvalidFormat},
		{"successLabel", m.SuccessLabel},
		{"failureLabel", m.FailureLabel},
		{"errorLabel", m.ErrorLabel},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("marker %q must not be empty", f.name)
		}
	}
	return nil
}

// Scanner recognizes marker lines. It holds no per-log state and is safe
// for concurrent use.
type Scanner struct {
	markers Markers
	session *regexp.Regexp
	success *regexp.Regexp
	failure *regexp.Regexp
}

// NewScanner compiles the patterns for the given markers.
func NewScanner(m Markers) (*Scanner, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	session, err := regexp.Compile(regexp.QuoteMeta(m.SessionLabel) + `\s+([a-f0-9\-]+)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile session pattern: %w", err)
	}
	success, err := regexp.Compile(regexp.QuoteMeta(m.SuccessLabel) + `\s+(.*)\.`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile success pattern: %w", err)
	}
	failure, err := regexp.Compile(regexp.QuoteMeta(m.FailureLabel) + `\s+(.*)\.\s+` + regexp.QuoteMeta(m.ErrorLabel) + `\s+(.*)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile failure pattern: %w", err)
	}

	return &Scanner{
		markers: m,
		session: session,
		success: success,
		failure: failure,
	}, nil
}

// MustNewScanner is like NewScanner but panics on invalid markers.
func MustNewScanner(m Markers) *Scanner {
	s, err := NewScanner(m)
	if err != nil {
		panic(err)
	}
	return s
}

// Scan returns every token found on line in the order session, evaluation
// header, invalid format, success, failure. A line without markers yields a
// single KindOther token.
func (s *Scanner) Scan(line string) []Token {
	var tokens []Token

	if m := s.session.FindStringSubmatch(line); m != nil {
		tokens = append(tokens, Token{Kind: KindSession, SessionID: m[1]})
	}
	if s.IsEvaluationHeader(line) {
		tokens = append(tokens, Token{Kind: KindEvaluationHeader})
	}
	if s.IsInvalidFormat(line) {
		tokens = append(tokens, Token{Kind: KindInvalidFormat})
	}
	if m := s.success.FindStringSubmatch(line); m != nil {
		tokens = append(tokens, Token{Kind: KindSuccess, ProblemID: m[1]})
	}
	if m := s.failure.FindStringSubmatch(line); m != nil {
		tokens = append(tokens, Token{Kind: KindFailure, ProblemID: m[1], Message: m[2]})
	}

	if len(tokens) == 0 {
		return []Token{{Kind: KindOther}}
	}
	return tokens
}

// IsEvaluationHeader reports whether line opens an evaluation block.
func (s *Scanner) IsEvaluationHeader(line string) bool {
	return strings.Contains(line, s.markers.EvaluationHeader)
}

// IsInvalidFormat reports whether line carries the invalid-solution marker.
func (s *Scanner) IsInvalidFormat(line string) bool {
	return strings.Contains(line, s.markers.InvalidFormat)
}

// IsBlockStart reports whether line starts a new top-level block.
func (s *Scanner) IsBlockStart(line string) bool {
	return strings.HasPrefix(line, s.markers.BlockPrefix)
}

// BlockHasInvalidFormat scans the block opened at lines[header] and reports
// whether any of its lines carries the invalid-format marker. The block ends
// at the next block start or at the end of lines.
func (s *Scanner) BlockHasInvalidFormat(lines []string, header int) bool {
	for i := header + 1; i < len(lines); i++ {
		if s.IsBlockStart(lines[i]) {
			return false
		}
		if s.IsInvalidFormat(lines[i]) {
			return true
		}
	}
	return false
}
