// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pagesize determines a remote database file's page size from
// its header.
//
// The page size lives in a two-byte big-endian field at [HeaderOffset]
// of the SQLite file header. That offset is specific to the SQLite
// format; other container formats are not supported.
//
// The [Resolver] probes the header by fetching the first
// [DefaultPageSize] bytes of the file, the working assumption before
// the real page size is known. The probe is not subject to the
// page-alignment rules that apply to ordinary reads.
package pagesize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/httpvfs/lib/endian"
	"github.com/bureau-foundation/httpvfs/lib/resultcode"
)

const (
	// HeaderOffset is the byte offset of the page-size field.
	HeaderOffset = 16

	// DefaultPageSize is the working page size before resolution, and
	// the length of the probe fetch.
	DefaultPageSize = 1024

	// MinPageSize and MaxPageSize bound legal page sizes. Every legal
	// page size is a power of two.
	MinPageSize = 512
	MaxPageSize = 65536

	// maxPageSizeMarker is stored in the header for MaxPageSize, which
	// does not fit in 16 bits.
	maxPageSizeMarker = 1
)

// Fetcher fetches an inclusive byte range of a remote file.
type Fetcher interface {
	FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error)
}

// Parse decodes the two-byte page-size field and validates it. Errors
// wrap resultcode.ErrInvalidPageSize.
func Parse(field []byte) (int64, error) {
	if len(field) < 2 {
		return 0, fmt.Errorf("%w: field has %d bytes", resultcode.ErrInvalidPageSize, len(field))
	}
	value := int64(endian.BigEndian16(field))
	if value == maxPageSizeMarker {
		return MaxPageSize, nil
	}
	if value < MinPageSize || value > MaxPageSize || value&(value-1) != 0 {
		return 0, fmt.Errorf("%w: %d", resultcode.ErrInvalidPageSize, value)
	}
	return value, nil
}

// Resolver probes remote file headers for their page size.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewResolver creates a Resolver that fetches through fetcher. If
// logger is nil, a no-op logger is used.
func NewResolver(fetcher Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve fetches the probe page of url and returns the page size its
// header declares. Fetch failures wrap resultcode.ErrFetch; an unusable
// header value wraps resultcode.ErrInvalidPageSize.
func (r *Resolver) Resolve(ctx context.Context, url string) (int64, error) {
	probe, err := r.fetcher.FetchRange(ctx, url, 0, DefaultPageSize-1)
	if err != nil {
		return 0, fmt.Errorf("probing page size: %w: %w", resultcode.ErrFetch, err)
	}
	if len(probe) < HeaderOffset+2 {
		return 0, fmt.Errorf("probing page size: %w: probe returned %d bytes", resultcode.ErrFetch, len(probe))
	}

	pageSize, err := Parse(probe[HeaderOffset : HeaderOffset+2])
	if err != nil {
		return 0, fmt.Errorf("probing page size of %s: %w", url, err)
	}

	r.logger.Info("page size resolved", "url", url, "page_size", pageSize)
	return pageSize, nil
}
