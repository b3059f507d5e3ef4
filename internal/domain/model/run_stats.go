package model

// RunStats is the immutable summary of one pipeline run. Routed holds the
// per-destination promoted counts keyed by destination name; a destination
// that received no accounts has no entry. Timestamp is unix milliseconds.
type RunStats struct {
	RunID       string         `json:"runId"`
	NewAccounts int            `json:"newAccounts"`
	NewThirties int            `json:"newThirties"`
	Routed      map[string]int `json:"routed,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// SetRouted records a destination's promoted count, allocating the map on
// first use. Zero counts are never recorded.
func (s *RunStats) SetRouted(destination string, count int) {
	if count == 0 {
		return
	}
	if s.Routed == nil {
		s.Routed = make(map[string]int)
	}
	s.Routed[destination] = count
}
