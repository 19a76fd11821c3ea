// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/config"
	"github.com/bureau-foundation/httpvfs/lib/queryservice"
	"github.com/bureau-foundation/httpvfs/lib/remotedb"
	"github.com/bureau-foundation/httpvfs/lib/testutil"
)

func TestServeAnswersQueriesUntilCancelled(t *testing.T) {
	path := testutil.CreateDatabase(t, 4096, `
		CREATE TABLE stations (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO stations (name) VALUES ('north'), ('south');
	`)
	fileServer := testutil.ServeFile(t, path, "stations.sqlite")

	cfg := config.LoadDefault()
	cfg.Database.URL = fileServer.URL + "/stations.sqlite"
	cfg.Worker.SocketPath = filepath.Join(testutil.SocketDir(t), "worker.sock")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, slog.New(slog.DiscardHandler))
	}()

	client := queryservice.NewClient(cfg.Worker.SocketPath)
	status := waitForStatus(t, client, done)
	if status.PageSize != 4096 || status.Name != "stations.sqlite" {
		t.Errorf("status = %+v", status)
	}

	result, err := client.Query(context.Background(), "SELECT name FROM stations ORDER BY id")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(result.Rows) != 2 || result.Rows[0][0] != "north" {
		t.Fatalf("rows = %#v", result.Rows)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "serve did not return after cancel"); err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func TestServeFailsForMissingDatabase(t *testing.T) {
	path := testutil.CreateDatabase(t, 4096, `CREATE TABLE t (x);`)
	fileServer := testutil.ServeFile(t, path, "present.sqlite")

	cfg := config.LoadDefault()
	cfg.Database.URL = fileServer.URL + "/absent.sqlite"
	cfg.Worker.SocketPath = filepath.Join(testutil.SocketDir(t), "worker.sock")

	if err := serve(context.Background(), cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("serve succeeded for a missing database")
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("HTTPVFS_CONFIG", "")

	if _, err := loadConfig("", false); err == nil {
		t.Error("expected an error with no config file and no --url")
	}
	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig with --url: %v", err)
	}
	if cfg.Worker.SocketPath == "" {
		t.Error("default socket path is empty")
	}
}

func TestNewLogger(t *testing.T) {
	var output bytes.Buffer
	logger, err := newLogger(&output, config.LoggingConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if got := output.String(); strings.Contains(got, "hidden") || !strings.Contains(got, `"msg":"shown"`) {
		t.Errorf("output = %q", got)
	}

	if _, err := newLogger(&output, config.LoggingConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := newLogger(&output, config.LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

// waitForStatus polls until the worker answers or serve exits. The
// socket only exists once the database is open, so early calls fail to
// connect.
func waitForStatus(t *testing.T, client *queryservice.Client, done <-chan error) remotedb.Status {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second) //nolint:realclock test hang prevention
	for {
		select {
		case err := <-done:
			t.Fatalf("serve exited before answering: %v", err)
		default:
		}
		status, err := client.Status(context.Background())
		if err == nil {
			return status
		}
		if time.Now().After(deadline) { //nolint:realclock test hang prevention
			t.Fatalf("worker never answered: %v", err)
		}
		time.Sleep(20 * time.Millisecond) //nolint:realclock polling a real socket
	}
}
