// Package postgres is the PostgreSQL store behind the report sink: a
// database/sql pool opened through lib/pq, plus COPY bulk loading and error
// classification for retries.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	"github.com/lib/pq"
)

type Client struct {
	DB *sql.DB
}

// New opens a pool sized by cfg and pings it once.
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Client{DB: db}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// Exec runs stmts in order outside a transaction and stops at the first
// failure. Meant for idempotent DDL.
func (c *Client) Exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %.40q: %w", stmt, err)
		}
	}
	return nil
}

// InTx runs fn in a transaction. fn's error triggers a rollback and stays
// in the returned chain; a failed rollback is only mentioned in the message.
func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CopyRows bulk-loads rows into table with COPY FROM STDIN and returns how
// many rows were sent before any failure.
func CopyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int, error) {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return 0, fmt.Errorf("preparing copy into %s: %w", table, err)
	}
	defer stmt.Close()
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return i, fmt.Errorf("copying row %d into %s: %w", i, table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return len(rows), fmt.Errorf("flushing copy into %s: %w", table, err)
	}
	return len(rows), nil
}

// Retryable reports whether err could succeed on a later attempt. Server
// errors are retryable only for connection loss (class 08), transaction
// rollback such as serialization failures (40), insufficient resources (53)
// and operator intervention (57). Errors that never reached the server are
// always retryable.
func Retryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return true
	}
	switch pqErr.Code.Class() {
	case "08", "40", "53", "57":
		return true
	default:
		return false
	}
}
