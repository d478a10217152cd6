package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB wraps a single-connection sql.DB, matching SQLite's single-writer
// constraint by capping the pool to one connection for the write path,
// mirrored from the Postgres adapter's pooled DB wrapper.
type DB struct {
	*sql.DB
}

// Connect opens (creating if necessary) a SQLite database file at path and
// applies the schema.
func Connect(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time; serializing at the connection
	// pool level avoids "database is locked" errors under concurrent
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	wrapped := &DB{DB: db}
	if err := wrapped.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

// InitSchema runs the embedded schema. Idempotent.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

// Transaction executes fn within a database transaction, rolling back on
// error or panic-free failure and committing otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
