// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpvfs implements a read-only virtual file system that
// serves an immutable, page-structured database file from a static
// HTTP server, one page-sized range request per read.
//
// The method set mirrors the engine's VFS callback contract: [VFS]
// carries the file-system callbacks (open, delete, access, full
// pathname, randomness, sleep, current time, last error) and [File]
// carries the per-file I/O callbacks (close, read, write, truncate,
// sync, file size, locking, file control, sector size, device
// characteristics, shared memory). Every callback returns a
// [resultcode.Code]; none returns a Go error or lets a panic escape.
//
// # Handle lifecycle
//
// A VFS holds at most one open remote file. The handle moves through
// three states:
//
//	StateClosed --Open ok--> StateOpenUnresolved --first read--> StateOpenResolved --Close--> StateClosed
//
// A failed Open leaves the VFS closed. Open while a handle is open
// returns CantOpen and changes nothing. Multiple VFS instances are
// independent, so tests create one per case.
//
// # Reads
//
// The first read on a handle resolves the page size through
// [pagesize.Resolver]. After that, each read must start on a page
// boundary and end within the same page; anything else returns IOErr
// before any request is sent. A valid read fetches exactly one whole
// page and copies the requested prefix of it. There is no prefetching
// and no page cache beyond the engine's own.
//
// # Blocking and cancellation
//
// Callbacks block until their HTTP request completes. Each request is
// bounded by the fetcher's timeout. [Config].Context is the parent of
// every request; cancelling it makes in-flight and later reads fail
// with IOErr and opens fail with CantOpen.
//
// A mutex serialises callbacks on one VFS. The engine already issues
// them one at a time per connection; the mutex only protects the
// handle when several connections probe the same VFS.
package httpvfs
