// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotedb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/enginefs"
	"github.com/bureau-foundation/httpvfs/lib/httpvfs"
	"github.com/bureau-foundation/httpvfs/lib/query"
	"github.com/bureau-foundation/httpvfs/lib/rangefetch"
	"github.com/bureau-foundation/httpvfs/lib/sqlitepool"
)

// Config locates the database and tunes the stack. Set either URL, or
// BaseURL and Name.
type Config struct {
	// URL is the absolute URL of the database file.
	URL string

	// BaseURL and Name locate the file as Name relative to BaseURL.
	BaseURL string
	Name    string

	// RequestTimeout bounds each HTTP request. Zero uses
	// rangefetch.DefaultTimeout.
	RequestTimeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client

	// MaxRows caps rows per query. Zero means no cap.
	MaxRows int

	// Logger is shared by every layer. If nil, a no-op logger is used.
	Logger *slog.Logger
}

// location returns the base URL and database name for the engine.
func (c Config) location() (base, name string, err error) {
	switch {
	case c.URL != "" && (c.BaseURL != "" || c.Name != ""):
		return "", "", errors.New("set either URL or BaseURL and Name, not both")
	case c.URL != "":
		parsed, err := url.Parse(c.URL)
		if err != nil {
			return "", "", fmt.Errorf("parsing URL: %w", err)
		}
		if !parsed.IsAbs() {
			return "", "", fmt.Errorf("URL %q is not absolute", c.URL)
		}
		name = path.Base(parsed.Path)
		if name == "/" || name == "." {
			return "", "", fmt.Errorf("URL %q has no file name", c.URL)
		}
		parsed.Path = strings.TrimSuffix(parsed.Path, name)
		parsed.RawPath = ""
		return parsed.String(), name, nil
	case c.BaseURL != "" && c.Name != "":
		return c.BaseURL, c.Name, nil
	default:
		return "", "", errors.New("database location is required: URL, or BaseURL and Name")
	}
}

// DB is an open remote database.
type DB struct {
	vfs        *httpvfs.VFS
	pool       *sqlitepool.Pool
	executor   *query.Executor
	vfsName    string
	name       string
	unregister func() error
	cancel     context.CancelFunc
	logger     *slog.Logger
}

// Status describes a DB for the status action of the query socket.
type Status struct {
	VFS              string `json:"vfs"`
	Name             string `json:"name"`
	URL              string `json:"url,omitempty"`
	State            string `json:"state"`
	Size             int64  `json:"size,omitempty"`
	PageSize         int64  `json:"page_size,omitempty"`
	RangesAdvertised bool   `json:"ranges_advertised"`
}

// Open builds the stack and reads the database schema once to prove the
// file is reachable and well-formed. Cancelling ctx after Open returns
// has no effect; use Close.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	base, name, err := cfg.location()
	if err != nil {
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fetcher := rangefetch.New(rangefetch.Config{
		HTTPClient: cfg.HTTPClient,
		Timeout:    cfg.RequestTimeout,
		UserAgent:  cfg.UserAgent,
		Logger:     logger,
	})

	// The VFS outlives ctx, which only bounds Open. Its own context is
	// cancelled by Close so blocked reads return promptly.
	vfsContext, cancel := context.WithCancel(context.Background())
	vfs, err := httpvfs.New(httpvfs.Config{
		Fetcher: fetcher,
		Context: vfsContext,
		Logger:  logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	fsys, err := enginefs.New(enginefs.Config{VFS: vfs, BaseURL: base, Logger: logger})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	vfsName, unregister, err := enginefs.Register(fsys)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		URI:    enginefs.URI(vfsName, url.PathEscape(name)),
		Logger: logger,
	})
	if err != nil {
		unregister()
		cancel()
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	executor, err := query.New(query.Config{Pool: pool, MaxRows: cfg.MaxRows, Logger: logger})
	if err != nil {
		pool.Close()
		unregister()
		cancel()
		return nil, fmt.Errorf("remotedb: %w", err)
	}

	db := &DB{
		vfs:        vfs,
		pool:       pool,
		executor:   executor,
		vfsName:    vfsName,
		name:       name,
		unregister: unregister,
		cancel:     cancel,
		logger:     logger,
	}

	if _, err := executor.Query(ctx, "SELECT count(*) FROM sqlite_schema"); err != nil {
		db.Close()
		return nil, fmt.Errorf("remotedb: reading schema of %s: %w", name, err)
	}

	logger.Info("remote database opened", "vfs", vfsName, "name", name, "base_url", base)
	return db, nil
}

// Query runs one SQL statement.
func (db *DB) Query(ctx context.Context, sql string) (*query.Result, error) {
	return db.executor.Query(ctx, sql)
}

// Status returns the VFS handle snapshot.
func (db *DB) Status() Status {
	status := Status{
		VFS:   db.vfsName,
		Name:  db.name,
		State: db.vfs.State().String(),
	}
	if info, ok := db.vfs.Handle(); ok {
		status.URL = info.URL
		status.State = info.State.String()
		status.Size = info.Size
		status.PageSize = info.PageSize
		status.RangesAdvertised = info.RangesAdvertised
	}
	return status
}

// Close closes the pool, unregisters the VFS, and cancels outstanding
// requests.
func (db *DB) Close() error {
	db.cancel()
	poolErr := db.pool.Close()
	unregisterErr := db.unregister()
	if err := errors.Join(poolErr, unregisterErr); err != nil {
		return fmt.Errorf("remotedb: closing %s: %w", db.name, err)
	}
	db.logger.Info("remote database closed", "vfs", db.vfsName)
	return nil
}
