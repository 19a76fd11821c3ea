// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultcode defines the fixed status vocabulary returned by
// every VFS callback and the single function that derives a status
// from an operation's outcome.
//
// The embedding engine only understands small integer result codes.
// Callback implementations therefore never return Go errors or panic
// across the boundary: they compute an error internally, then convert
// it with [For]:
//
//	data, err := fetchPage(...)
//	return resultcode.For(resultcode.OpRead, err)
//
// The numeric values of [Code] match SQLite's primary result codes so
// they can be handed to the engine unchanged.
//
// Outcomes are classified by sentinel errors ([ErrReadOnly],
// [ErrMisaligned], ...). Errors that match no sentinel fall back to a
// per-operation default: opens become [GenericError] (an unexpected
// fault), reads become [IOErr], everything else [GenericError].
//
// This package depends on no other httpvfs packages.
package resultcode
