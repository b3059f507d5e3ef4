package store

import (
	"context"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

// AccountRepository is the set of account operations the pipeline needs
// from a single relational store. The tracking store uses all of them;
// destination stores use InsertAccounts and CountMatured only.
type AccountRepository interface {
	// InsertAccounts bulk-inserts accounts, leaving any existing row with
	// the same username untouched. No-op for an empty list.
	InsertAccounts(ctx context.Context, accounts []model.Account) error

	// CountAccounts returns the total number of account rows.
	CountAccounts(ctx context.Context) (int64, error)

	// ListMatured returns accounts with level > 29 that are not banned, in
	// whatever order the store yields them.
	ListMatured(ctx context.Context) ([]model.Account, error)

	// MarkConsumed sets banned = true for exactly the given usernames.
	// No-op for an empty list.
	MarkConsumed(ctx context.Context, usernames []string) error

	// CountMatured returns the number of rows with level > 29, banned or
	// not. Reporting only; it reflects cumulative state across runs.
	CountMatured(ctx context.Context) (int64, error)
}
