// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/bureau-foundation/httpvfs/lib/clock"
	"github.com/bureau-foundation/httpvfs/lib/sqlitepool"
)

var (
	// ErrEmptyQuery is returned for SQL with no statement in it.
	ErrEmptyQuery = errors.New("query contains no statement")

	// ErrMultipleStatements is returned when text follows the first
	// statement.
	ErrMultipleStatements = errors.New("query contains more than one statement")
)

// Result is the outcome of one query.
type Result struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Config configures an Executor.
type Config struct {
	// Pool supplies connections. Required.
	Pool *sqlitepool.Pool

	// MaxRows caps the rows returned by one query. Zero means no cap.
	MaxRows int

	// Clock times queries for the log. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives one debug record per query. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// Executor runs queries against a pool.
type Executor struct {
	pool    *sqlitepool.Pool
	maxRows int
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("query: Pool is required")
	}
	if cfg.MaxRows < 0 {
		return nil, fmt.Errorf("query: MaxRows must not be negative, got %d", cfg.MaxRows)
	}
	executor := &Executor{
		pool:    cfg.Pool,
		maxRows: cfg.MaxRows,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
	if executor.clock == nil {
		executor.clock = clock.Real()
	}
	if executor.logger == nil {
		executor.logger = slog.New(slog.DiscardHandler)
	}
	return executor, nil
}

// Query runs sql, which must hold exactly one statement.
func (e *Executor) Query(ctx context.Context, sql string) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyQuery
	}

	conn, err := e.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer e.pool.Put(conn)

	conn.SetInterrupt(ctx.Done())
	defer conn.SetInterrupt(nil)

	start := e.clock.Now()
	result, err := collect(conn, sql, e.maxRows)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("query executed",
		"columns", len(result.Columns),
		"rows", len(result.Rows),
		"truncated", result.Truncated,
		"duration", e.clock.Now().Sub(start).Round(time.Microsecond),
	)
	return result, nil
}

func collect(conn *sqlite.Conn, sql string, maxRows int) (*Result, error) {
	stmt, trailingBytes, err := conn.PrepareTransient(sql)
	if err != nil {
		return nil, fmt.Errorf("preparing query: %w", err)
	}
	if stmt == nil {
		return nil, ErrEmptyQuery
	}
	defer stmt.Finalize()

	if trailing := sql[len(sql)-trailingBytes:]; strings.TrimSpace(trailing) != "" {
		return nil, fmt.Errorf("%w: %q", ErrMultipleStatements, trailing)
	}

	result := &Result{
		Columns: make([]string, stmt.ColumnCount()),
		Rows:    [][]any{},
	}
	for i := range result.Columns {
		result.Columns[i] = stmt.ColumnName(i)
	}

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("running query: %w", err)
		}
		if !hasRow {
			return result, nil
		}
		if maxRows > 0 && len(result.Rows) == maxRows {
			result.Truncated = true
			return result, nil
		}
		result.Rows = append(result.Rows, rowValues(stmt, len(result.Columns)))
	}
}

func rowValues(stmt *sqlite.Stmt, columns int) []any {
	row := make([]any, columns)
	for i := range row {
		switch stmt.ColumnType(i) {
		case sqlite.TypeInteger:
			row[i] = stmt.ColumnInt64(i)
		case sqlite.TypeFloat:
			row[i] = stmt.ColumnFloat(i)
		case sqlite.TypeText:
			row[i] = stmt.ColumnText(i)
		case sqlite.TypeBlob:
			blob := make([]byte, stmt.ColumnLen(i))
			stmt.ColumnBytes(i, blob)
			row[i] = blob
		default:
			row[i] = nil
		}
	}
	return row
}
