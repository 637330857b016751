// Package diagnostics records every compile run to durable storage so a
// user can review past failures across sessions — the playground and REPL
// both write through it. The store runs on database/sql against whichever
// driver the caller registers: mattn/go-sqlite3 for a local file by
// default, or jackc/pgx/v5's stdlib driver for a shared Postgres instance.
package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded compile attempt.
type Run struct {
	ID         int64
	SourceHash string
	Stage      string // "ok", "lex", "parse", or "analyze"
	Message    string
	Line       int
	Column     int
	UserID     string // empty when the request was unauthenticated
	CompiledAt time.Time
}

// Store wraps a database/sql handle with the diagnostics schema.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens (and, for sqlite3, creates) the diagnostics database using
// driver ("sqlite3" or "pgx") and dsn, and ensures the runs table exists.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(driver); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// placeholder returns the n-th bind placeholder for the store's driver:
// pgx takes numbered $1-style placeholders, sqlite3 takes bare "?".
func (s *Store) placeholder(n int) string {
	if s.driver == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) migrate(driver string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "pgx" {
		serial = "SERIAL PRIMARY KEY"
	}
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS compile_runs (
			id ` + serial + `,
			source_hash TEXT NOT NULL,
			stage TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			line INTEGER NOT NULL DEFAULT 0,
			col INTEGER NOT NULL DEFAULT 0,
			user_id TEXT NOT NULL DEFAULT '',
			compiled_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Record inserts a single compile run.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	query := fmt.Sprintf(
		`INSERT INTO compile_runs (source_hash, stage, message, line, col, user_id, compiled_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5), s.placeholder(6), s.placeholder(7),
	)
	res, err := s.db.ExecContext(ctx, query,
		run.SourceHash, run.Stage, run.Message, run.Line, run.Column, run.UserID, run.CompiledAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns the most recent n compile runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	return s.RecentOffset(ctx, n, 0, "")
}

// RecentOffset returns up to n compile runs starting offset runs back from
// the newest, newest first, optionally restricted to a single stage (pass ""
// for every stage) — the paging and filtering a history listing needs.
func (s *Store) RecentOffset(ctx context.Context, n, offset int, stage string) ([]Run, error) {
	query := `SELECT id, source_hash, stage, message, line, col, user_id, compiled_at FROM compile_runs`
	args := []interface{}{}
	if stage != "" {
		args = append(args, stage)
		query += fmt.Sprintf(" WHERE stage = %s", s.placeholder(len(args)))
	}
	args = append(args, n)
	query += fmt.Sprintf(" ORDER BY compiled_at DESC LIMIT %s", s.placeholder(len(args)))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET %s", s.placeholder(len(args)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SourceHash, &r.Stage, &r.Message, &r.Line, &r.Column, &r.UserID, &r.CompiledAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FailureRate returns the fraction of the last n runs that did not succeed.
func (s *Store) FailureRate(ctx context.Context, n int) (float64, error) {
	runs, err := s.Recent(ctx, n)
	if err != nil {
		return 0, err
	}
	if len(runs) == 0 {
		return 0, nil
	}

	failed := 0
	for _, r := range runs {
		if r.Stage != "ok" {
			failed++
		}
	}
	return float64(failed) / float64(len(runs)), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
