// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package enginefs exposes an [httpvfs.VFS] as an [io/fs.FS] and
// registers it with the embedded SQLite engine.
//
// The engine's Go VFS shim (modernc.org/sqlite/vfs) drives a
// read-only fs.FS: it opens files by name, seeks, reads, and stats
// them. [FS] answers those calls by resolving the name against a base
// URL and forwarding to the VFS callbacks, so every page the engine
// touches becomes one HTTP range request.
//
// Typical wiring:
//
//	fsys, _ := enginefs.New(enginefs.Config{VFS: vfs, BaseURL: "https://host/data/"})
//	name, unregister, _ := enginefs.Register(fsys)
//	defer unregister()
//	uri := enginefs.URI(name, "db.sqlite")
//	// open uri with sqlitepool
//
// The VFS holds one handle at a time, so the engine must use a single
// connection per registered FS.
package enginefs
