// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package query runs one SQL statement on a pooled read-only
// connection and collects the result as column names plus rows of
// values.
//
// Row values keep the engine's storage class: int64, float64, string,
// []byte, or nil. [Config].MaxRows bounds how many rows a single query
// may return; a result cut short is marked Truncated.
//
// The context passed to [Executor.Query] interrupts the statement when
// cancelled, including while the VFS is blocked on a page fetch.
package query
