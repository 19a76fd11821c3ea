// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [CreateDatabase] builds a real SQLite file with a chosen page size,
// and [ServeFile] publishes it from an httptest server that records
// every Range header, so tests can assert on the exact requests the
// VFS issues.
//
// [SocketDir] creates a temporary directory in /tmp for Unix domain
// sockets, whose paths are limited to 108 bytes.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
