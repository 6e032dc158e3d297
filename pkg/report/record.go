package report

// SessionRecord is one finalized session reconstructed from a run log,
// optionally enriched with the matching result artifact.
type SessionRecord struct {
	SessionID     string         `json:"session_id"`
	ProblemID     string         `json:"problem_id"`
	Agent         *string        `json:"agent"`
	Results       map[string]any `json:"results"`
	InvalidFormat bool           `json:"invalid_format"`
	Error         *string        `json:"error"`
	JSONError     *string        `json:"json_error,omitempty"`
}

// Succeeded reports whether the session ended with a success marker.
func (r *SessionRecord) Succeeded() bool {
	return r.Error == nil
}

// Correlated reports whether an artifact was attached to the record.
func (r *SessionRecord) Correlated() bool {
	return r.JSONError == nil && (r.Agent != nil || r.Results != nil)
}
