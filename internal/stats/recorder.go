// Package stats persists the rolling history of run summaries.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

// Recorder appends run summaries to a JSON history file, oldest first.
// The whole sequence is rewritten on every append; a single writer is
// assumed (external scheduler with a no-overlap guarantee).
type Recorder struct {
	path string
}

func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// History returns previously recorded runs. A missing file yields an
// empty history, not an error.
func (r *Recorder) History() ([]model.RunStats, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats %s: %w", r.path, err)
	}

	var history []model.RunStats
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("parse stats %s: %w", r.path, err)
	}
	return history, nil
}

// Append rewrites the history with rec added at the end.
func (r *Recorder) Append(rec model.RunStats) error {
	history, err := r.History()
	if err != nil {
		return err
	}
	history = append(history, rec)

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("write stats %s: %w", r.path, err)
	}
	return nil
}
