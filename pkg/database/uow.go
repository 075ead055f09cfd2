package database

import (
	"context"
	"database/sql"
	"log/slog"
)

// Querier is the subset of *sql.DB and *sql.Tx used by repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UnitOfWork is a single local transaction. Repositories write through Tx and
// nothing is visible outside until Commit succeeds.
type UnitOfWork struct {
	tx   *sql.Tx
	done bool
}

// Begin starts a unit of work.
func Begin(ctx context.Context, db *sql.DB) (*UnitOfWork, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{tx: tx}, nil
}

// Tx returns the transaction repositories should write through.
func (u *UnitOfWork) Tx() Querier {
	return u.tx
}

// Commit commits the transaction. It reports false when the commit itself
// fails; a cancelled ctx rolls back and is returned as an error.
func (u *UnitOfWork) Commit(ctx context.Context) (bool, error) {
	if u.done {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		u.Release()
		return false, err
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		slog.Error("commit failed", slog.Any("error", err))
		return false, nil
	}
	return true, nil
}

// Release rolls back unless the unit of work was committed. Safe to call
// more than once.
func (u *UnitOfWork) Release() {
	if u.done {
		return
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Warn("rollback failed", slog.Any("error", err))
	}
}
