// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultcode

import (
	"errors"
	"fmt"
)

// Code is a VFS result code. Values are SQLite's primary result codes.
type Code int

const (
	OK           Code = 0
	GenericError Code = 1
	ReadOnly     Code = 8
	IOErr        Code = 10
	NotFound     Code = 12
	CantOpen     Code = 14
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case GenericError:
		return "generic-error"
	case ReadOnly:
		return "read-only"
	case IOErr:
		return "io-error"
	case NotFound:
		return "not-found"
	case CantOpen:
		return "cant-open"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Operation identifies the callback that produced an outcome. The
// operation only matters for errors that match no sentinel.
type Operation int

const (
	OpOpen Operation = iota
	OpAccess
	OpDelete
	OpFullPathname
	OpSleep
	OpClose
	OpRead
	OpWrite
	OpTruncate
	OpSync
	OpFileSize
	OpFileControl
	OpShm
)

var operationNames = [...]string{
	OpOpen:         "open",
	OpAccess:       "access",
	OpDelete:       "delete",
	OpFullPathname: "full-pathname",
	OpSleep:        "sleep",
	OpClose:        "close",
	OpRead:         "read",
	OpWrite:        "write",
	OpTruncate:     "truncate",
	OpSync:         "sync",
	OpFileSize:     "file-size",
	OpFileControl:  "file-control",
	OpShm:          "shm",
}

func (o Operation) String() string {
	if o >= 0 && int(o) < len(operationNames) {
		return operationNames[o]
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// Outcome sentinels. Wrap them with fmt.Errorf("...: %w", ...) to add
// detail; For matches with errors.Is.
var (
	// ErrEmptyName: open was called without a name.
	ErrEmptyName = errors.New("empty file name")

	// ErrHandleOpen: open was called while a handle is already open.
	ErrHandleOpen = errors.New("a file is already open")

	// ErrUnavailable: the remote file could not be opened (non-200
	// HEAD, unreachable host, cancelled context during open).
	ErrUnavailable = errors.New("remote file unavailable")

	// ErrNameTooLong: a pathname did not fit the output buffer.
	ErrNameTooLong = errors.New("pathname does not fit output buffer")

	// ErrMisaligned: a read did not start on a page boundary.
	ErrMisaligned = errors.New("read not page-aligned")

	// ErrSpansPages: a read extends past the end of its page.
	ErrSpansPages = errors.New("read spans more than one page")

	// ErrFetch: a page fetch failed (transport, HTTP status, or body
	// length mismatch).
	ErrFetch = errors.New("page fetch failed")

	// ErrInvalidPageSize: the header does not contain a usable page size.
	ErrInvalidPageSize = errors.New("invalid page size in header")

	// ErrSleepUnsupported: sleeping is not emulated.
	ErrSleepUnsupported = errors.New("sleep not supported")

	// ErrNoHandle: a file operation was issued with no open handle.
	ErrNoHandle = errors.New("no open file")

	// ErrUnknownControl: the file-control opcode is not handled.
	ErrUnknownControl = errors.New("unknown file control")

	// ErrReadOnly: a mutation was attempted.
	ErrReadOnly = errors.New("read-only file system")

	// ErrInternal: an unexpected fault (recovered panic).
	ErrInternal = errors.New("internal fault")
)

// classification is checked in order; the first match wins.
var classification = []struct {
	sentinel error
	code     Code
}{
	{ErrReadOnly, ReadOnly},
	{ErrNoHandle, NotFound},
	{ErrUnknownControl, NotFound},
	{ErrEmptyName, CantOpen},
	{ErrHandleOpen, CantOpen},
	{ErrUnavailable, CantOpen},
	{ErrNameTooLong, CantOpen},
	{ErrMisaligned, IOErr},
	{ErrSpansPages, IOErr},
	{ErrFetch, IOErr},
	{ErrInvalidPageSize, IOErr},
	{ErrSleepUnsupported, IOErr},
	{ErrInternal, GenericError},
}

// For returns the result code for the outcome err of operation op. A
// nil err is OK. For is pure: it inspects nothing but its arguments.
func For(op Operation, err error) Code {
	if err == nil {
		return OK
	}
	for _, entry := range classification {
		if errors.Is(err, entry.sentinel) {
			return entry.code
		}
	}
	switch op {
	case OpRead:
		return IOErr
	default:
		return GenericError
	}
}

// Error carries a non-OK result code through a Go error chain. Adapters
// that expose the VFS through error-returning interfaces (io.ReaderAt,
// fs.FS) return *Error so callers can recover the original code.
type Error struct {
	Op   Operation
	Code Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// AsError returns nil for OK and an *Error otherwise.
func AsError(op Operation, code Code) error {
	if code == OK {
		return nil
	}
	return &Error{Op: op, Code: code}
}

// CodeOf extracts the result code from err: OK for nil, the carried
// code for an *Error anywhere in the chain, and For(op, err) otherwise.
func CodeOf(op Operation, err error) Code {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return For(op, err)
}
