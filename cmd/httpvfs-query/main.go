// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// httpvfs-query runs one SQL statement against a remote SQLite
// database, either through a running httpvfs-worker socket or by
// opening the database itself over HTTP.
//
//	httpvfs-query --socket /tmp/aqi.sock "SELECT city, aqi FROM readings LIMIT 5"
//	httpvfs-query --url https://example.org/data/aqi.sqlite "SELECT count(*) FROM readings"
//	httpvfs-query --socket /tmp/aqi.sock --status
//
// With neither --socket nor --url, the socket named in the config file
// ($HTTPVFS_CONFIG) is used.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/httpvfs/lib/config"
	"github.com/bureau-foundation/httpvfs/lib/process"
	"github.com/bureau-foundation/httpvfs/lib/query"
	"github.com/bureau-foundation/httpvfs/lib/queryservice"
	"github.com/bureau-foundation/httpvfs/lib/remotedb"
	"github.com/bureau-foundation/httpvfs/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		socketPath  string
		databaseURL string
		showStatus  bool
		outputJSON  bool
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("httpvfs-query", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", "", "httpvfs-worker socket to query")
	flagSet.StringVar(&databaseURL, "url", "", "open the database at this URL directly instead of using a worker")
	flagSet.BoolVar(&showStatus, "status", false, "print the database status instead of running a query")
	flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log HTTP activity to stderr (with --url)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print(os.Stdout, "httpvfs-query")
		return nil
	}

	sql := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if sql == "" && !showStatus {
		return errors.New("usage: httpvfs-query [--socket PATH | --url URL] [--json] SQL")
	}
	if socketPath != "" && databaseURL != "" {
		return errors.New("--socket and --url are mutually exclusive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var target database
	if databaseURL != "" {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger, err := process.NewLogger(os.Stderr, process.FormatText, level)
		if err != nil {
			return err
		}
		db, err := remotedb.Open(ctx, remotedb.Config{
			URL:       databaseURL,
			UserAgent: version.UserAgent(),
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		target = localDatabase{db}
	} else {
		if socketPath == "" {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("no --socket or --url given: %w", err)
			}
			socketPath = cfg.Worker.SocketPath
		}
		target = queryservice.NewClient(socketPath)
	}

	return execute(ctx, os.Stdout, target, sql, showStatus, outputJSON)
}

// database is what the command needs from a worker client or an
// in-process database.
type database interface {
	Query(ctx context.Context, sql string) (*query.Result, error)
	Status(ctx context.Context) (remotedb.Status, error)
}

// localDatabase adapts a remotedb.DB to database.
type localDatabase struct {
	db *remotedb.DB
}

func (l localDatabase) Query(ctx context.Context, sql string) (*query.Result, error) {
	return l.db.Query(ctx, sql)
}

func (l localDatabase) Status(context.Context) (remotedb.Status, error) {
	return l.db.Status(), nil
}

func execute(ctx context.Context, w io.Writer, target database, sql string, showStatus, outputJSON bool) error {
	if showStatus {
		status, err := target.Status(ctx)
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(w, status)
		}
		return writeStatus(w, status)
	}

	result, err := target.Query(ctx, sql)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(w, result)
	}
	return writeTable(w, result)
}
