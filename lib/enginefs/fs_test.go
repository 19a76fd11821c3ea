// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginefs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/httpvfs"
	"github.com/bureau-foundation/httpvfs/lib/rangefetch"
	"github.com/bureau-foundation/httpvfs/lib/resultcode"
)

const pageSize = 1024

// serveDatabase starts a server with one file at /data/db.sqlite whose
// header declares a 1024-byte page size.
func serveDatabase(t *testing.T, size int) (*httptest.Server, []byte) {
	t.Helper()
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i % 253)
	}
	binary.BigEndian.PutUint16(content[16:], pageSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/data/db.sqlite", func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "db.sqlite", time.Time{}, bytes.NewReader(content))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, content
}

func newTestFS(t *testing.T, baseURL string) *FS {
	t.Helper()
	vfs, err := httpvfs.New(httpvfs.Config{Fetcher: rangefetch.New(rangefetch.Config{})})
	if err != nil {
		t.Fatalf("httpvfs.New: %v", err)
	}
	fsys, err := New(Config{VFS: vfs, BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fsys
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without VFS")
	}
	vfs, _ := httpvfs.New(httpvfs.Config{Fetcher: rangefetch.New(rangefetch.Config{})})
	if _, err := New(Config{VFS: vfs, BaseURL: "data/"}); err == nil {
		t.Error("expected error for relative base URL")
	}
}

func TestResolve(t *testing.T) {
	fsys := newTestFS(t, "https://host/data/")
	tests := []struct {
		name string
		want string
	}{
		{"db.sqlite", "https://host/data/db.sqlite"},
		{"sub/db.sqlite", "https://host/data/sub/db.sqlite"},
		{"/root.sqlite", "https://host/root.sqlite"},
		{"https://other/x.sqlite", "https://other/x.sqlite"},
	}
	for _, test := range tests {
		got, err := fsys.Resolve(test.name)
		if err != nil {
			t.Errorf("Resolve(%q): %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("Resolve(%q) = %q, want %q", test.name, got, test.want)
		}
	}

	bare := newTestFS(t, "")
	if _, err := bare.Resolve("db.sqlite"); err == nil {
		t.Error("expected error resolving a relative name without a base URL")
	}
	if got, err := bare.Resolve("https://host/db.sqlite"); err != nil || got != "https://host/db.sqlite" {
		t.Errorf("Resolve(absolute) = %q, %v", got, err)
	}
}

func TestOpenReadSeek(t *testing.T) {
	server, content := serveDatabase(t, 4*pageSize)
	fsys := newTestFS(t, server.URL+"/data/")

	f, err := fsys.Open("db.sqlite")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len(content)) || info.Name() != "db.sqlite" || info.IsDir() {
		t.Fatalf("Stat = %q size %d dir %v", info.Name(), info.Size(), info.IsDir())
	}

	header := make([]byte, 100)
	if _, err := io.ReadFull(f, header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if !bytes.Equal(header, content[:100]) {
		t.Fatal("header bytes differ")
	}

	seeker := f.(io.Seeker)
	if position, err := seeker.Seek(2*pageSize, io.SeekStart); err != nil || position != 2*pageSize {
		t.Fatalf("Seek = %d, %v", position, err)
	}
	page := make([]byte, pageSize)
	if _, err := io.ReadFull(f, page); err != nil {
		t.Fatalf("reading page 3: %v", err)
	}
	if !bytes.Equal(page, content[2*pageSize:3*pageSize]) {
		t.Fatal("page 3 bytes differ")
	}

	if position, _ := seeker.Seek(-pageSize, io.SeekEnd); position != 3*pageSize {
		t.Fatalf("Seek from end = %d, want %d", position, 3*pageSize)
	}
	if _, err := seeker.Seek(-1, io.SeekStart); err == nil {
		t.Fatal("expected error seeking before start")
	}
}

func TestReadAt(t *testing.T) {
	server, content := serveDatabase(t, 2*pageSize)
	fsys := newTestFS(t, server.URL+"/data/")

	f, err := fsys.Open("db.sqlite")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	reader := f.(io.ReaderAt)

	buffer := make([]byte, pageSize)
	if n, err := reader.ReadAt(buffer, pageSize); err != nil || n != pageSize {
		t.Fatalf("ReadAt = %d, %v", n, err)
	}
	if !bytes.Equal(buffer, content[pageSize:]) {
		t.Fatal("ReadAt bytes differ")
	}

	if n, err := reader.ReadAt(buffer, 2*pageSize); n != 0 || err != io.EOF {
		t.Fatalf("ReadAt at end = %d, %v; want 0, EOF", n, err)
	}

	_, err = reader.ReadAt(make([]byte, 10), 10)
	var coded *resultcode.Error
	if !errors.As(err, &coded) || coded.Code != resultcode.IOErr {
		t.Fatalf("misaligned ReadAt error = %v, want io-error", err)
	}
}

func TestOpenMissingIsNotExist(t *testing.T) {
	server, _ := serveDatabase(t, pageSize)
	fsys := newTestFS(t, server.URL+"/data/")

	_, err := fsys.Open("missing.sqlite")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Open(missing) = %v, want ErrNotExist", err)
	}
	if _, err := fsys.Stat("missing.sqlite"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Stat(missing) = %v, want ErrNotExist", err)
	}
	if _, err := fsys.Stat("db.sqlite"); err != nil {
		t.Fatalf("Stat(db.sqlite) = %v", err)
	}
}

func TestSecondOpenFailsUntilClose(t *testing.T) {
	server, _ := serveDatabase(t, pageSize)
	fsys := newTestFS(t, server.URL+"/data/")

	first, err := fsys.Open("db.sqlite")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := fsys.Open("db.sqlite"); err == nil {
		t.Fatal("second Open succeeded while the first is open")
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := first.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Fatalf("second Close = %v, want ErrClosed", err)
	}
	if _, err := first.Read(make([]byte, 1)); !errors.Is(err, fs.ErrClosed) {
		t.Fatalf("Read after Close = %v, want ErrClosed", err)
	}

	again, err := fsys.Open("db.sqlite")
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	again.Close()
}

func TestURI(t *testing.T) {
	uri := URI("httpvfs-1", "db.sqlite")
	if !strings.HasPrefix(uri, "file:db.sqlite?") {
		t.Fatalf("URI = %q", uri)
	}
	for _, parameter := range []string{"vfs=httpvfs-1", "mode=ro", "immutable=1"} {
		if !strings.Contains(uri, parameter) {
			t.Errorf("URI %q lacks %s", uri, parameter)
		}
	}
}
