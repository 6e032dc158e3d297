package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mcpchecker/sessionreport/pkg/report"
	"k8s.io/utils/ptr"
)

// NoMatchingJSON is recorded when no artifact carries a record's session id.
const NoMatchingJSON = "No matching JSON"

var errNotObject = errors.New("artifact is not a JSON object")

// correlated holds the artifact fields copied onto a record. The typing is
// strict: a non-string agent or non-object results fails correlation.
type correlated struct {
	Agent   *string        `json:"agent"`
	Results map[string]any `json:"results"`
}

// Correlator attaches artifact fields to session records.
type Correlator struct {
	index *Index
}

// NewCorrelator returns a Correlator backed by index.
func NewCorrelator(index *Index) *Correlator {
	return &Correlator{index: index}
}

// Correlate enriches each record in place. Records without a session id are
// left untouched. Failures are recorded on the record and never abort the batch.
func (c *Correlator) Correlate(records []*report.SessionRecord) {
	for _, r := range records {
		c.CorrelateOne(r)
	}
}

// CorrelateOne enriches a single record.
func (c *Correlator) CorrelateOne(r *report.SessionRecord) {
	if r.SessionID == "" {
		return
	}

	r.Agent = nil
	r.Results = nil
	r.JSONError = nil

	path, ok := c.index.Lookup(r.SessionID)
	if !ok {
		r.JSONError = ptr.To(NoMatchingJSON)
		return
	}

	fields, err := readCorrelated(path)
	if err != nil {
		r.JSONError = ptr.To(fmt.Sprintf("Failed to read JSON: %v", err))
		return
	}

	r.Agent = fields.Agent
	r.Results = fields.Results
}

func readCorrelated(path string) (*correlated, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return nil, errNotObject
	}

	var fields correlated
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	return &fields, nil
}
