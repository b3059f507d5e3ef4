package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileLedger keeps the seen set as a comma-delimited snapshot file that is
// rewritten in full every run. A missing file is an empty set; any read or
// write failure must be treated as fatal by the caller, otherwise the
// never-re-emit guarantee is lost.
type FileLedger struct {
	path string
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

func (l *FileLedger) Load(_ context.Context) (map[string]struct{}, error) {
	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", l.path, err)
	}

	seen := make(map[string]struct{})
	for _, line := range strings.Split(string(raw), "\n") {
		name := strings.TrimSpace(Username(line))
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	return seen, nil
}

func (l *FileLedger) Replace(_ context.Context, rows []string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", l.path, err)
	}
	return nil
}

func (l *FileLedger) Close() error { return nil }
