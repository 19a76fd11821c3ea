// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginefs

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/httpvfs/lib/httpvfs"
	"github.com/bureau-foundation/httpvfs/lib/resultcode"
)

// Config configures an FS.
type Config struct {
	// VFS serves the callbacks. Required.
	VFS *httpvfs.VFS

	// BaseURL, when set, is the reference relative names are resolved
	// against. Absolute URLs are used as given either way.
	BaseURL string

	// Logger receives open and close records. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// FS is a read-only fs.FS over a VFS.
type FS struct {
	vfs    *httpvfs.VFS
	base   *url.URL
	logger *slog.Logger
}

// New creates an FS.
func New(cfg Config) (*FS, error) {
	if cfg.VFS == nil {
		return nil, fmt.Errorf("enginefs: VFS is required")
	}
	fsys := &FS{vfs: cfg.VFS, logger: cfg.Logger}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("enginefs: parsing base URL: %w", err)
		}
		if !base.IsAbs() {
			return nil, fmt.Errorf("enginefs: base URL %q is not absolute", cfg.BaseURL)
		}
		fsys.base = base
	}
	if fsys.logger == nil {
		fsys.logger = slog.New(slog.DiscardHandler)
	}
	return fsys, nil
}

// Resolve returns the URL the engine name refers to.
func (fsys *FS) Resolve(name string) (string, error) {
	reference, err := url.Parse(name)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", name, err)
	}
	if reference.IsAbs() {
		return reference.String(), nil
	}
	if fsys.base == nil {
		return "", fmt.Errorf("relative name %q with no base URL", name)
	}
	return fsys.base.ResolveReference(reference).String(), nil
}

// Open opens name through the VFS under a fresh token.
func (fsys *FS) Open(name string) (fs.File, error) {
	target, err := fsys.Resolve(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	token := httpvfs.Token(uuid.NewString())
	handle, _, code := fsys.vfs.Open(target, token, httpvfs.OpenReadOnly|httpvfs.OpenMainDB)
	if code != resultcode.OK {
		return nil, &fs.PathError{Op: "open", Path: name, Err: openError(code)}
	}

	size, code := handle.FileSize()
	if code != resultcode.OK {
		handle.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: resultcode.AsError(resultcode.OpFileSize, code)}
	}

	fsys.logger.Debug("engine opened remote file", "name", name, "url", target, "size", size)
	return &file{handle: handle, name: name, size: size, logger: fsys.logger}, nil
}

// Stat reports whether name can be opened, without keeping it open.
// Any failure reads as fs.ErrNotExist, which is how the engine learns
// that journal and WAL siblings are absent.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	target, err := fsys.Resolve(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	exists, code := fsys.vfs.Access(target, httpvfs.AccessExists)
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fmt.Errorf("%w: %w", fs.ErrNotExist, resultcode.AsError(resultcode.OpAccess, code))}
	}
	return fileInfo{name: name}, nil
}

func openError(code resultcode.Code) error {
	err := resultcode.AsError(resultcode.OpOpen, code)
	if code == resultcode.CantOpen {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	return err
}

// file is an open remote file. It is not safe for concurrent use; the
// engine drives each file from one connection.
type file struct {
	handle *httpvfs.File
	name   string
	size   int64
	offset int64
	closed bool
	logger *slog.Logger
}

func (f *file) Stat() (fs.FileInfo, error) {
	return fileInfo{name: f.name, size: f.size}, nil
}

// ReadAt reads len(p) bytes at off through one VFS read. Reads that end
// past the file are truncated to the file and return io.EOF.
func (f *file) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrInvalid}
	}
	if off >= f.size {
		return 0, io.EOF
	}
	want := p
	if remaining := f.size - off; int64(len(want)) > remaining {
		want = want[:remaining]
	}
	if code := f.handle.Read(want, off); code != resultcode.OK {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: resultcode.AsError(resultcode.OpRead, code)}
	}
	if len(want) < len(p) {
		return len(want), io.EOF
	}
	return len(want), nil
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.offset)
	f.offset += int64(n)
	if err == io.EOF && n > 0 {
		return n, nil
	}
	return n, err
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	var position int64
	switch whence {
	case io.SeekStart:
		position = offset
	case io.SeekCurrent:
		position = f.offset + offset
	case io.SeekEnd:
		position = f.size + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	if position < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	f.offset = position
	return position, nil
}

func (f *file) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.name, Err: fs.ErrClosed}
	}
	f.closed = true
	f.logger.Debug("engine closed remote file", "name", f.name)
	if code := f.handle.Close(); code != resultcode.OK {
		return &fs.PathError{Op: "close", Path: f.name, Err: resultcode.AsError(resultcode.OpClose, code)}
	}
	return nil
}

type fileInfo struct {
	name string
	size int64
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) Mode() fs.FileMode  { return 0o444 }
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return false }
func (i fileInfo) Sys() any           { return nil }
