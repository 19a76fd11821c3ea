// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP body reads and connection error
// classification shared by the range fetcher and the query socket.
//
// Page bodies are read with [ReadExact], which never buffers more than
// one byte past the expected length. A server that ignores the Range
// header and streams the whole database back with 200 OK is detected
// after expected+1 bytes instead of after downloading the file.
//
// Error bodies are read with [ErrorBody], capped at [MaxErrorBodySize],
// for inclusion in diagnostic messages.
package netutil

import (
	"fmt"
	"io"
)

// MaxErrorBodySize bounds how much of an error response is kept for
// diagnostics. Static file servers return short HTML error pages; the
// cap only guards against a misbehaving server.
const MaxErrorBodySize int64 = 4 << 10

// LengthError reports a body whose length differs from the expected
// length. Got is at most Want+1: reading stops one byte past Want.
type LengthError struct {
	Want int64
	Got  int64
}

func (e *LengthError) Error() string {
	if e.Got > e.Want {
		return fmt.Sprintf("body longer than expected %d bytes", e.Want)
	}
	return fmt.Sprintf("body has %d bytes, expected %d", e.Got, e.Want)
}

// ReadExact reads exactly want bytes from body. It returns a
// *LengthError if the body is shorter or longer than want.
func ReadExact(body io.Reader, want int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, want+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) != want {
		return nil, &LengthError{Want: want, Got: int64(len(data))}
	}
	return data, nil
}

// ErrorBody reads an HTTP error response body (up to MaxErrorBodySize
// bytes) and returns it as a string for diagnostic error messages.
// Read errors are silently ignored: a partial or empty body is still
// useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return string(data)
}
