// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remotedb assembles a queryable database from a URL: range
// fetcher, [httpvfs.VFS], engine file system, read-only connection
// pool, and query executor, in that order.
//
// [Open] returns only once the database header has been read through
// the VFS, so a returned [DB] is ready to answer queries. [DB.Close]
// tears the stack down in reverse.
package remotedb
