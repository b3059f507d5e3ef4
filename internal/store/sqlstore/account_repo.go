package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

// AccountRepo implements store.AccountRepository against a single
// relational store. Insert semantics are insert-or-ignore keyed on
// username, so repeated runs never overwrite existing rows.
type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) InsertAccounts(ctx context.Context, accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	query, args := insertAccountsQuery(r.db.Driver(), accounts)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert accounts: %w", err)
	}
	return nil
}

// insertAccountsQuery builds a multi-row insert with ignore-on-conflict
// semantics for the given dialect.
func insertAccountsQuery(driver string, accounts []model.Account) (string, []any) {
	rows := make([]string, 0, len(accounts))
	args := make([]any, 0, len(accounts)*3)
	for i, a := range accounts {
		base := i * 3
		rows = append(rows, fmt.Sprintf("(%s, %s, %s)",
			placeholder(driver, base+1),
			placeholder(driver, base+2),
			placeholder(driver, base+3),
		))
		args = append(args, a.Username, a.Password, a.Level)
	}

	var b strings.Builder
	if driver == "mysql" {
		b.WriteString("INSERT IGNORE INTO account (username, password, level) VALUES ")
		b.WriteString(strings.Join(rows, ", "))
	} else {
		b.WriteString("INSERT INTO account (username, password, level) VALUES ")
		b.WriteString(strings.Join(rows, ", "))
		b.WriteString(" ON CONFLICT (username) DO NOTHING")
	}
	return b.String(), args
}

func (r *AccountRepo) CountAccounts(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(username) FROM account`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return total, nil
}

func (r *AccountRepo) ListMatured(ctx context.Context) ([]model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT username, password, level, banned
		FROM account
		WHERE banned = FALSE AND level > %d
	`, model.MaturityLevel))
	if err != nil {
		return nil, fmt.Errorf("list matured: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.Username, &a.Password, &a.Level, &a.Banned); err != nil {
			return nil, fmt.Errorf("scan matured account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matured accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepo) MarkConsumed(ctx context.Context, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	marks := make([]string, 0, len(usernames))
	args := make([]any, 0, len(usernames))
	for i, name := range usernames {
		marks = append(marks, placeholder(r.db.Driver(), i+1))
		args = append(args, name)
	}

	query := "UPDATE account SET banned = TRUE WHERE username IN (" + strings.Join(marks, ", ") + ")"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark consumed: %w", err)
	}
	return nil
}

func (r *AccountRepo) CountMatured(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var total int64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(username) FROM account WHERE level > %d`, model.MaturityLevel,
	)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count matured: %w", err)
	}
	return total, nil
}
