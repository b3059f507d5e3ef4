package ledger

import "context"

// Ledger records which usernames the source reader has already observed,
// so an account is reported as new at most once across runs.
type Ledger interface {
	// Load returns the set of previously seen usernames.
	Load(ctx context.Context) (map[string]struct{}, error)

	// Replace persists rows as the full known set. Rows are raw
	// "username,password,email" lines; only the first field is consulted
	// on load.
	Replace(ctx context.Context, rows []string) error

	Close() error
}

// Username extracts the first comma-delimited field of a ledger row.
func Username(row string) string {
	for i := 0; i < len(row); i++ {
		if row[i] == ',' {
			return row[:i]
		}
	}
	return row
}
