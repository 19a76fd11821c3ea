// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration used on
// the query socket.
//
// The encoder uses Core Deterministic Encoding: the same logical value
// always produces the same bytes. The decoder turns untyped maps into
// map[string]any and untyped integers into int64, so a row decoded
// into []any holds int64, float64, string, []byte, or nil, matching
// the engine's storage classes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// A `cbor` tag marks a type that is only ever serialized as CBOR. A
// `json` tag marks a type that is also printed as JSON (for example
// query results, which httpvfs-query prints as JSON lines);
// fxamacker/cbor reads `json` tags when `cbor` tags are absent. Never
// put both tags on one field.
package codec
