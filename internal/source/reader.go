// Package source produces the list of newly observed accounts for a run,
// either from flat-file exports or from tracking-store growth.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
	"github.com/TurtIeSocks/account-manager/internal/ledger"
	"github.com/TurtIeSocks/account-manager/internal/store"
)

// Result is what a source reader hands the pipeline. NewAccounts is
// populated in file mode only; NewCount feeds stats.newAccounts in both
// modes and may be negative in counter mode when rows were deleted
// externally.
type Result struct {
	NewAccounts []model.Account
	NewCount    int
}

// Reader produces a deduplicated list of newly observed accounts.
type Reader interface {
	Read(ctx context.Context) (Result, error)
}

const (
	commentMarker = "#"
	successMarker = "OK;"
)

// FileReader scans an export directory for account files. A line counts
// when it is not a comment and carries the success marker; eligible lines
// are "username;password;email;..." records.
type FileReader struct {
	dir    string
	ledger ledger.Ledger
	logger *slog.Logger
}

func NewFileReader(dir string, l ledger.Ledger, logger *slog.Logger) *FileReader {
	return &FileReader{
		dir:    dir,
		ledger: l,
		logger: logger.With("component", "file_reader"),
	}
}

func (r *FileReader) Read(ctx context.Context) (Result, error) {
	rows, err := r.scan()
	if err != nil {
		return Result{}, err
	}

	seen, err := r.ledger.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load ledger: %w", err)
	}

	// The ledger always becomes the latest full scan, not just the delta.
	// A failure here is fatal: continuing would re-emit these accounts as
	// new on the next run.
	if err := r.ledger.Replace(ctx, rows); err != nil {
		return Result{}, fmt.Errorf("replace ledger: %w", err)
	}

	var fresh []model.Account
	for _, row := range rows {
		username := ledger.Username(row)
		if _, ok := seen[username]; ok {
			continue
		}
		parts := strings.SplitN(row, ",", 3)
		account := model.Account{Username: parts[0], Level: 0}
		if len(parts) > 1 {
			account.Password = parts[1]
		}
		if len(parts) > 2 {
			account.Email = parts[2]
		}
		fresh = append(fresh, account)
	}

	r.logger.Debug("scanned export dir", "rows", len(rows), "new", len(fresh))
	return Result{NewAccounts: fresh, NewCount: len(fresh)}, nil
}

// scan aggregates eligible lines across every file in the export dir,
// re-encoded as comma-delimited "username,password,email" rows.
func (r *FileReader) scan() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir %s: %w", r.dir, err)
	}

	var rows []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read export file %s: %w", entry.Name(), err)
		}
		for _, line := range strings.Split(string(raw), "\n") {
			if strings.HasPrefix(line, commentMarker) || !strings.HasSuffix(line, successMarker) {
				continue
			}
			parts := strings.Split(line, ";")
			if len(parts) < 3 {
				continue
			}
			rows = append(rows, parts[0]+","+parts[1]+","+parts[2])
		}
	}
	return rows, nil
}

// CounterReader measures tracking-store growth against a persisted count.
// It never inserts rows; ingestion already happened through another path.
type CounterReader struct {
	path   string
	repo   store.AccountRepository
	logger *slog.Logger
}

func NewCounterReader(path string, repo store.AccountRepository, logger *slog.Logger) (*CounterReader, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create counter dir: %w", err)
		}
		if err := os.WriteFile(path, []byte("0"), 0o644); err != nil {
			return nil, fmt.Errorf("bootstrap counter file: %w", err)
		}
	}
	return &CounterReader{
		path:   path,
		repo:   repo,
		logger: logger.With("component", "counter_reader"),
	}, nil
}

func (r *CounterReader) Read(ctx context.Context) (Result, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return Result{}, fmt.Errorf("read counter file %s: %w", r.path, err)
	}
	last, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return Result{}, fmt.Errorf("parse counter file %s: %w", r.path, err)
	}

	// A failed total query degrades to "no growth observed" rather than
	// aborting the run; lastCount is persisted unchanged.
	persist := int64(last)
	diff := 0
	total, err := r.repo.CountAccounts(ctx)
	if err != nil {
		r.logger.Warn("count accounts failed, assuming no growth", "error", err)
	} else {
		// Not clamped: a negative diff signals external row deletion.
		diff = int(total) - last
		persist = total
	}

	if err := os.WriteFile(r.path, []byte(strconv.FormatInt(persist, 10)), 0o644); err != nil {
		return Result{}, fmt.Errorf("write counter file %s: %w", r.path, err)
	}
	return Result{NewCount: diff}, nil
}
