// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// httpvfs-worker opens a SQLite database published on a static HTTP
// server and answers SQL queries for it on a Unix socket.
//
// The database is never downloaded: every page the engine reads is one
// HTTP range request, so the server only needs to support Range and
// report Content-Length. The worker logs "ready" once the database
// header has been read and the socket is accepting queries; clients
// connecting earlier fail to connect rather than wait.
//
// Configuration comes from the YAML file named by --config or
// HTTPVFS_CONFIG. --url and --socket override the file, and with --url
// no file is needed at all:
//
//	httpvfs-worker --url https://example.org/data/aqi.sqlite --socket /tmp/aqi.sock
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/httpvfs/lib/config"
	"github.com/bureau-foundation/httpvfs/lib/process"
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
		configPath  string
		databaseURL string
		socketPath  string
		logLevel    string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("httpvfs-worker", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to httpvfs.yaml (default: $HTTPVFS_CONFIG)")
	flagSet.StringVar(&databaseURL, "url", "", "absolute URL of the database file (overrides database.*)")
	flagSet.StringVar(&socketPath, "socket", "", "Unix socket to serve queries on (overrides worker.socket_path)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn, or error (overrides logging.level)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print(os.Stdout, "httpvfs-worker")
		return nil
	}

	cfg, err := loadConfig(configPath, databaseURL != "")
	if err != nil {
		return err
	}
	if databaseURL != "" {
		cfg.Database = config.DatabaseConfig{URL: databaseURL}
	}
	if socketPath != "" {
		cfg.Worker.SocketPath = socketPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(os.Stderr, cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// newLogger builds the process logger from the logging section.
func newLogger(output io.Writer, logging config.LoggingConfig) (*slog.Logger, error) {
	level, err := logging.SlogLevel()
	if err != nil {
		return nil, err
	}
	return process.NewLogger(output, logging.Format, level)
}

// loadConfig loads the file named by path or HTTPVFS_CONFIG. When the
// database is given on the command line the file is optional.
func loadConfig(path string, databaseOnCommandLine bool) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("HTTPVFS_CONFIG") == "" && databaseOnCommandLine {
		return config.LoadDefault(), nil
	}
	return config.Load()
}

// serve opens the database and answers queries until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	db, err := remotedb.Open(ctx, remotedb.Config{
		URL:            cfg.Database.URL,
		BaseURL:        cfg.Database.BaseURL,
		Name:           cfg.Database.Name,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		UserAgent:      userAgent,
		MaxRows:        cfg.Worker.MaxRows,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	server := queryservice.NewServer(cfg.Worker.SocketPath, db, logger)

	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Serve(groupContext)
	})
	group.Go(func() error {
		select {
		case <-server.Ready():
		case <-groupContext.Done():
			return nil
		}
		status := db.Status()
		logger.Info("ready",
			"version", version.Info(),
			"socket", cfg.Worker.SocketPath,
			"url", status.URL,
			"size", status.Size,
			"page_size", status.PageSize,
		)
		<-groupContext.Done()
		logger.Info("shutting down")
		return nil
	})

	return group.Wait()
}
