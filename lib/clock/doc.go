// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The VFS answers the engine's current-time callbacks from a Clock
// rather than calling time.Now directly, so tests can assert the exact
// Julian-day values produced for a known instant:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	vfs := httpvfs.New(httpvfs.Config{Clock: c, ...})
//	c.Advance(12 * time.Hour)
//
// Production code passes Real().
package clock
