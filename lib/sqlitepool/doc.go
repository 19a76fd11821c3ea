// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a read-only SQLite connection pool for
// databases served through a registered VFS.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool. The database is
// opened from a URI (see enginefs.URI) with read-only and URI flags,
// so the engine never attempts to create, journal, or lock the remote
// file. Callers [Pool.Take] a connection, run queries, and [Pool.Put]
// it back. Connections are not safe for concurrent use.
//
// # Pragmas
//
// Every connection is initialized with:
//
//   - query_only=ON: refuse any statement that would write, before the
//     engine reaches the VFS.
//   - cache_size=-8192: 8 MB page cache per connection. Every cache miss
//     is an HTTP request, so the cache is the only thing between a
//     repeated query and the network.
//   - temp_store=MEMORY: sorting and temporary tables stay in memory;
//     the VFS cannot create temporary files.
//
// # Pool size
//
// The HTTP VFS holds one open handle, so a pool over it must have
// exactly one connection. PoolSize defaults to 1; larger pools are only
// useful for local files in tests.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    URI:    enginefs.URI(vfsName, "db.sqlite"),
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
package sqlitepool
