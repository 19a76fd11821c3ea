// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rangefetch issues the blocking HTTP requests behind the
// remote VFS: a HEAD to learn a file's size and range support, and
// GETs with an inclusive Range header for individual pages.
//
// Every call blocks the calling goroutine until the response body has
// been fully read or the request fails. Each request is bounded by
// [Config].Timeout and by the caller's context; a timed-out or
// cancelled request returns an error like any other transport failure.
//
// Responses are validated here, not by callers:
//
//   - [Client.Head] requires 200 OK.
//   - [Client.FetchRange] accepts 200 and 206 and requires a body of
//     exactly end-start+1 bytes. A server that ignores Range and
//     returns the whole file fails the length check (unless the file is
//     exactly one range long) without the rest of the body being read.
//
// Requests send Accept-Encoding: identity. A transparently compressed
// response would make byte ranges refer to the compressed stream.
package rangefetch
