// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package queryservice carries SQL queries across a process boundary.
//
// A [Server] listens on a Unix socket and answers one CBOR request per
// connection: the client writes a request map, the server writes a
// [Response] envelope, and the connection closes. Two actions exist:
//
//	{action: "query", sql: "SELECT ..."} -> {ok: true, data: {columns: [...], rows: [[...], ...]}}
//	{action: "status"}                   -> {ok: true, data: {vfs: ..., state: ..., page_size: ...}}
//
// Failures of any kind come back as {ok: false, error: "..."}; the
// server never drops a connection without a response once it has read
// a request. [Client] is the matching caller; it returns a
// *[ServiceError] for ok=false responses and plain errors for transport
// failures.
//
// The server only accepts connections once Serve is listening, and the
// worker only calls Serve after the database has been opened, so any
// client that can connect is talking to a ready database. [Server.Ready]
// is closed at that point.
package queryservice
