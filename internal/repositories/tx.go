package repositories

import (
	"database/sql"
	"fmt"
)

// Transactor runs a function inside a single database transaction. The
// transaction is rolled back if fn returns an error (or panics) and committed
// otherwise, so callers get all-or-nothing semantics without touching *sql.Tx.
type Transactor interface {
	WithinTransaction(fn func(tx SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor backed by the given connection pool.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTransaction(fn func(tx SQLExecutor) error) error {
	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
