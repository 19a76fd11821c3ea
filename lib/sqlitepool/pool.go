// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a read-only pool. URI is
// required; all other fields have defaults.
type Config struct {
	// URI is the SQLite URI of the database, for example
	// "file:db.sqlite?vfs=httpvfs-1&mode=ro&immutable=1". Plain paths
	// also work and are opened read-only.
	URI string

	// PoolSize is the number of connections. If zero or negative,
	// defaults to 1.
	PoolSize int

	// Logger receives pool open/close messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// OnConnect is called once per connection after the standard
	// pragmas. If it returns an error the connection is discarded and
	// the error is returned to the caller of Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is a fixed-size pool of read-only SQLite connections.
//
// Pool is safe for concurrent use. Individual connections are not.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	uri    string
}

// Open creates the pool. Connections are opened lazily on first Take,
// so an unreachable database surfaces as a Take error.
func Open(cfg Config) (*Pool, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("sqlitepool: URI is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}

	inner, err := sqlitex.NewPool(cfg.URI, sqlitex.PoolOptions{
		Flags:    sqlite.OpenReadOnly | sqlite.OpenURI,
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.OnConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.URI, err)
	}

	logger.Info("sqlite pool opened",
		"uri", cfg.URI,
		"pool_size", poolSize,
	)

	return &Pool{
		inner:  inner,
		logger: logger,
		uri:    cfg.URI,
	}, nil
}

// Take borrows a connection. Blocks until one is available or ctx is
// cancelled. The caller must Put it back.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close closes all connections, blocking until borrowed ones are
// returned.
func (p *Pool) Close() error {
	err := p.inner.Close()
	if err != nil {
		p.logger.Error("sqlite pool close error",
			"uri", p.uri,
			"error", err,
		)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.uri, err)
	}
	p.logger.Info("sqlite pool closed", "uri", p.uri)
	return nil
}

func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	pragmas := []string{
		"PRAGMA query_only=ON",
		"PRAGMA cache_size=-8192",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}

	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("sqlitepool: OnConnect: %w", err)
		}
	}

	return nil
}
