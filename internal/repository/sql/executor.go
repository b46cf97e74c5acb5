package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbExecutor is an interface that represents either *sql.DB or *sql.Tx.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withinTransaction runs fn in a transaction and commits only if fn succeeds.
func withinTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return withinTransactionOpts(ctx, db, nil, fn)
}

// withinSnapshot runs fn in a read-only REPEATABLE READ transaction, so every
// statement in fn sees the same committed state.
func withinSnapshot(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return withinTransactionOpts(ctx, db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func withinTransactionOpts(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func mapUniqueViolation(err error) error {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pqUniqueViolationErrCode {
		return &repository.UniqueConstraintError{Detail: pgError.Detail}
	}
	return err
}
