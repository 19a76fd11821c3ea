// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// CreateDatabase writes a SQLite database with the given page size to a
// temporary file, runs script against it, and returns the file path.
// The default rollback journal leaves the file complete once this
// returns.
func CreateDatabase(t *testing.T, pageSize int, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.sqlite")
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		t.Fatalf("creating fixture database: %v", err)
	}
	defer conn.Close()

	// page_size only takes effect before the first table is created and
	// outside a transaction, so it runs ahead of the script.
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA page_size=%d", pageSize), nil); err != nil {
		t.Fatalf("setting fixture page size: %v", err)
	}
	if err := sqlitex.ExecuteScript(conn, script, nil); err != nil {
		t.Fatalf("populating fixture database: %v", err)
	}
	return path
}

// FileServer serves files from a directory and records the Range
// header of every GET.
type FileServer struct {
	*httptest.Server

	mu     sync.Mutex
	ranges []string
	heads  int
}

// ServeFile starts a FileServer whose only file is path, published
// under name. It is closed when the test completes.
func ServeFile(t *testing.T, path, name string) *FileServer {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}

	server := &FileServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/") != name {
			http.NotFound(w, r)
			return
		}
		server.mu.Lock()
		switch r.Method {
		case http.MethodHead:
			server.heads++
		case http.MethodGet:
			server.ranges = append(server.ranges, r.Header.Get("Range"))
		}
		server.mu.Unlock()
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(content))
	}))
	t.Cleanup(server.Close)
	return server
}

// Ranges returns the Range headers received so far, in order.
func (s *FileServer) Ranges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ranges...)
}

// Heads returns the number of HEAD requests received.
func (s *FileServer) Heads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heads
}
