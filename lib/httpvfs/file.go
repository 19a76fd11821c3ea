// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package httpvfs

import (
	"fmt"

	"github.com/bureau-foundation/httpvfs/lib/resultcode"
)

// File is the I/O half of the callback contract for one open handle.
// A File whose handle has been closed answers NotFound.
type File struct {
	vfs    *VFS
	token  Token
	handle *remoteFile
}

// Token returns the token the file was opened under.
func (f *File) Token() Token { return f.token }

// Close releases the handle. NotFound if it is not open.
func (f *File) Close() (code resultcode.Code) {
	defer f.vfs.recoverInto(resultcode.OpClose, &code)
	f.vfs.logger.Debug("close", "token", f.token)
	return resultcode.For(resultcode.OpClose, f.vfs.close(f.handle))
}

func (v *VFS) close(opened *remoteFile) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.currentLocked(opened); err != nil {
		return err
	}
	v.handle = nil
	return nil
}

// Read fills p with len(p) bytes starting at offset. The first read on
// a handle resolves the page size. The range [offset, offset+len(p))
// must start on a page boundary and lie within one page; otherwise Read
// returns IOErr without touching the network.
func (f *File) Read(p []byte, offset int64) (code resultcode.Code) {
	defer f.vfs.recoverInto(resultcode.OpRead, &code)
	f.vfs.logger.Debug("read", "token", f.token, "amount", len(p), "offset", offset)

	if err := f.vfs.read(f.handle, p, offset); err != nil {
		code = resultcode.For(resultcode.OpRead, err)
		f.vfs.logger.Warn("read failed",
			"amount", len(p),
			"offset", offset,
			"error", err,
			"code", code,
		)
		return code
	}
	return resultcode.OK
}

func (v *VFS) read(opened *remoteFile, p []byte, offset int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	handle, err := v.currentLocked(opened)
	if err != nil {
		return err
	}

	if handle.pageSize == 0 {
		pageSize, err := v.resolver.Resolve(v.ctx, handle.url)
		if err != nil {
			return err
		}
		handle.pageSize = pageSize
	}

	pageSize := handle.pageSize
	amount := int64(len(p))
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", resultcode.ErrMisaligned, offset)
	}
	pageIndex := offset / pageSize
	rangeStart := pageIndex * pageSize
	if offset != rangeStart {
		return fmt.Errorf("%w: offset %d with page size %d", resultcode.ErrMisaligned, offset, pageSize)
	}
	if rangeStart+pageSize < offset+amount {
		return fmt.Errorf("%w: %d bytes at offset %d with page size %d",
			resultcode.ErrSpansPages, amount, offset, pageSize)
	}

	page, err := v.fetcher.FetchRange(v.ctx, handle.url, rangeStart, rangeStart+pageSize-1)
	if err != nil {
		return fmt.Errorf("page %d: %w: %w", pageIndex, resultcode.ErrFetch, err)
	}
	if int64(len(page)) != pageSize {
		return fmt.Errorf("page %d: %w: got %d bytes, want %d", pageIndex, resultcode.ErrFetch, len(page), pageSize)
	}

	copy(p, page[offset-rangeStart:offset-rangeStart+amount])
	return nil
}

// Write always fails with ReadOnly.
func (f *File) Write(p []byte, offset int64) resultcode.Code {
	f.vfs.logger.Debug("write", "token", f.token, "amount", len(p), "offset", offset)
	return resultcode.For(resultcode.OpWrite, resultcode.ErrReadOnly)
}

// Truncate always fails with ReadOnly.
func (f *File) Truncate(size int64) resultcode.Code {
	f.vfs.logger.Debug("truncate", "token", f.token, "size", size)
	return resultcode.For(resultcode.OpTruncate, resultcode.ErrReadOnly)
}

// Sync always fails with ReadOnly.
func (f *File) Sync(flags int) resultcode.Code {
	f.vfs.logger.Debug("sync", "token", f.token, "flags", flags)
	return resultcode.For(resultcode.OpSync, resultcode.ErrReadOnly)
}

// FileSize returns the Content-Length recorded when the handle was
// opened.
func (f *File) FileSize() (size int64, code resultcode.Code) {
	defer f.vfs.recoverInto(resultcode.OpFileSize, &code)
	f.vfs.logger.Debug("file size", "token", f.token)

	f.vfs.mu.Lock()
	defer f.vfs.mu.Unlock()
	handle, err := f.vfs.currentLocked(f.handle)
	if err != nil {
		return 0, resultcode.For(resultcode.OpFileSize, err)
	}
	return handle.size, resultcode.OK
}

// Lock accepts any lock level.
func (f *File) Lock(level LockLevel) resultcode.Code {
	f.vfs.logger.Debug("lock", "token", f.token, "level", int(level))
	return resultcode.OK
}

// Unlock accepts any lock level.
func (f *File) Unlock(level LockLevel) resultcode.Code {
	f.vfs.logger.Debug("unlock", "token", f.token, "level", int(level))
	return resultcode.OK
}

// CheckReservedLock reports that no reserved lock is held.
func (f *File) CheckReservedLock() (bool, resultcode.Code) {
	f.vfs.logger.Debug("check reserved lock", "token", f.token)
	return false, resultcode.OK
}

// FileControl handles no opcodes and returns NotFound, which tells the
// engine to fall back to its defaults.
func (f *File) FileControl(op int) resultcode.Code {
	f.vfs.logger.Debug("file control", "token", f.token, "op", op)
	return resultcode.For(resultcode.OpFileControl, resultcode.ErrUnknownControl)
}

// SectorSize returns NominalSectorSize.
func (f *File) SectorSize() (int, resultcode.Code) {
	return NominalSectorSize, resultcode.OK
}

// DeviceCharacteristics reports the file as immutable.
func (f *File) DeviceCharacteristics() IOCap {
	return IOCapImmutable
}

// ShmMap always fails with ReadOnly. Shared-memory primitives only
// serve concurrent writers, which a read-only remote never has.
func (f *File) ShmMap(region, regionSize int, extend bool) resultcode.Code {
	f.vfs.logger.Debug("shm map", "token", f.token, "region", region)
	return resultcode.For(resultcode.OpShm, resultcode.ErrReadOnly)
}

// ShmLock always fails with ReadOnly.
func (f *File) ShmLock(offset, n int, flags int) resultcode.Code {
	f.vfs.logger.Debug("shm lock", "token", f.token, "offset", offset, "n", n)
	return resultcode.For(resultcode.OpShm, resultcode.ErrReadOnly)
}

// ShmBarrier always fails with ReadOnly.
func (f *File) ShmBarrier() resultcode.Code {
	f.vfs.logger.Debug("shm barrier", "token", f.token)
	return resultcode.For(resultcode.OpShm, resultcode.ErrReadOnly)
}

// ShmUnmap always fails with ReadOnly.
func (f *File) ShmUnmap(deleteFlag bool) resultcode.Code {
	f.vfs.logger.Debug("shm unmap", "token", f.token)
	return resultcode.For(resultcode.OpShm, resultcode.ErrReadOnly)
}
