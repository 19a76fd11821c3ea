// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package httpvfs

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/clock"
	"github.com/bureau-foundation/httpvfs/lib/pagesize"
	"github.com/bureau-foundation/httpvfs/lib/rangefetch"
	"github.com/bureau-foundation/httpvfs/lib/resultcode"
)

// Fetcher performs the blocking HTTP requests. *rangefetch.Client is
// the production implementation.
type Fetcher interface {
	Head(ctx context.Context, url string) (rangefetch.Metadata, error)
	FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error)
}

// Config holds the collaborators of a VFS. Fetcher is required.
type Config struct {
	// Fetcher performs HEAD and ranged GET requests.
	Fetcher Fetcher

	// Clock answers CurrentTime and CurrentTimeInt64. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Random fills Randomness requests. Defaults to crypto/rand.Reader.
	Random io.Reader

	// Context is the parent of every request. Cancelling it fails
	// later opens with CantOpen and reads with IOErr. Defaults to
	// context.Background().
	Context context.Context

	// Logger receives one debug record per callback plus warnings for
	// degraded servers. If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Julian day number of the Unix epoch, and the engine's time unit.
const (
	julianDayUnixEpoch = 2440587.5
	millisecondsPerDay = 86400000
)

// VFS is the file-system half of the callback contract. It owns the
// single open handle.
type VFS struct {
	fetcher  Fetcher
	resolver *pagesize.Resolver
	clock    clock.Clock
	random   io.Reader
	ctx      context.Context
	logger   *slog.Logger

	mu     sync.Mutex
	handle *remoteFile
}

// remoteFile is the open handle. pageSize is zero until the first
// successful read resolves it.
type remoteFile struct {
	token        Token
	url          string
	size         int64
	pageSize     int64
	acceptRanges bool
}

// HandleInfo is a snapshot of the open handle.
type HandleInfo struct {
	Token            Token
	URL              string
	Size             int64
	PageSize         int64
	RangesAdvertised bool
	State            State
}

// New creates a VFS with no open handle.
func New(cfg Config) (*VFS, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("httpvfs: Fetcher is required")
	}
	vfs := &VFS{
		fetcher: cfg.Fetcher,
		clock:   cfg.Clock,
		random:  cfg.Random,
		ctx:     cfg.Context,
		logger:  cfg.Logger,
	}
	if vfs.clock == nil {
		vfs.clock = clock.Real()
	}
	if vfs.random == nil {
		vfs.random = rand.Reader
	}
	if vfs.ctx == nil {
		vfs.ctx = context.Background()
	}
	if vfs.logger == nil {
		vfs.logger = slog.New(slog.DiscardHandler)
	}
	vfs.resolver = pagesize.NewResolver(cfg.Fetcher, vfs.logger)
	return vfs, nil
}

// Open opens the remote file at name (a URL) under token. On success
// the returned File serves the handle's I/O callbacks and the output
// flags always include OpenReadOnly, whatever flags were requested.
func (v *VFS) Open(name string, token Token, flags OpenFlag) (file *File, outFlags OpenFlag, code resultcode.Code) {
	defer v.recoverInto(resultcode.OpOpen, &code)
	v.logger.Debug("open", "name", name, "token", token, "flags", int(flags))

	handle, err := v.open(name, token)
	if err != nil {
		code = resultcode.For(resultcode.OpOpen, err)
		v.logger.Warn("failed to open remote file", "name", name, "error", err, "code", code)
		return nil, 0, code
	}
	return &File{vfs: v, token: token, handle: handle}, OpenReadOnly, resultcode.OK
}

func (v *VFS) open(name string, token Token) (*remoteFile, error) {
	if name == "" {
		return nil, resultcode.ErrEmptyName
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.handle != nil {
		return nil, fmt.Errorf("opening %s: %w (%s)", name, resultcode.ErrHandleOpen, v.handle.url)
	}

	metadata, err := v.fetcher.Head(v.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resultcode.ErrUnavailable, err)
	}
	if !metadata.AcceptRanges {
		v.logger.Warn("server does not report byte range support", "url", name)
	}

	v.handle = &remoteFile{
		token:        token,
		url:          name,
		size:         metadata.Size,
		acceptRanges: metadata.AcceptRanges,
	}
	return v.handle, nil
}

// Delete always fails: nothing can be removed from a read-only remote.
func (v *VFS) Delete(name string, syncDir bool) resultcode.Code {
	v.logger.Debug("delete", "name", name)
	return resultcode.For(resultcode.OpDelete, resultcode.ErrReadOnly)
}

// Access reports whether name can be opened. Write access is refused
// outright. Otherwise Access opens and closes a probe handle and
// returns the open's result code; it fails with CantOpen while another
// handle is open.
func (v *VFS) Access(name string, flags AccessFlag) (exists bool, code resultcode.Code) {
	defer v.recoverInto(resultcode.OpAccess, &code)
	v.logger.Debug("access", "name", name, "flags", int(flags))

	if flags == AccessReadWrite {
		return false, resultcode.For(resultcode.OpAccess, resultcode.ErrReadOnly)
	}

	file, _, code := v.Open(name, accessProbeToken, OpenReadOnly)
	if code != resultcode.OK {
		return false, code
	}
	file.Close()
	return true, resultcode.OK
}

// FullPathname copies name into out followed by a NUL byte. Names are
// used verbatim. Returns CantOpen when name and terminator do not fit.
func (v *VFS) FullPathname(name string, out []byte) resultcode.Code {
	v.logger.Debug("full pathname", "name", name)
	n := copy(out, name)
	if n == len(name) && n < len(out) {
		out[n] = 0
		return resultcode.OK
	}
	return resultcode.For(resultcode.OpFullPathname,
		fmt.Errorf("%w: %d bytes into %d", resultcode.ErrNameTooLong, len(name)+1, len(out)))
}

// Randomness fills out from a cryptographically strong source and
// returns the number of bytes written.
func (v *VFS) Randomness(out []byte) int {
	v.logger.Debug("randomness", "bytes", len(out))
	n, err := io.ReadFull(v.random, out)
	if err != nil {
		v.logger.Warn("random source failed", "requested", len(out), "written", n, "error", err)
	}
	return n
}

// Sleep is not emulated and always returns IOErr.
func (v *VFS) Sleep(d time.Duration) resultcode.Code {
	v.logger.Debug("sleep", "duration", d)
	return resultcode.For(resultcode.OpSleep, resultcode.ErrSleepUnsupported)
}

// CurrentTime returns the current time as a Julian day number with
// fractional day.
func (v *VFS) CurrentTime() (float64, resultcode.Code) {
	milliseconds := v.clock.Now().UnixMilli()
	return julianDayUnixEpoch + float64(milliseconds)/millisecondsPerDay, resultcode.OK
}

// CurrentTimeInt64 returns the current time as milliseconds since the
// Julian epoch: the Unix time in milliseconds offset by the Julian day
// of the Unix epoch.
func (v *VFS) CurrentTimeInt64() (int64, resultcode.Code) {
	milliseconds := v.clock.Now().UnixMilli()
	return int64(julianDayUnixEpoch*millisecondsPerDay) + milliseconds, resultcode.OK
}

// GetLastError reports no detail: no error buffer is kept. It writes
// nothing to buf.
func (v *VFS) GetLastError(buf []byte) (int, resultcode.Code) {
	return 0, resultcode.OK
}

// State returns the handle's lifecycle state.
func (v *VFS) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *VFS) stateLocked() State {
	switch {
	case v.handle == nil:
		return StateClosed
	case v.handle.pageSize == 0:
		return StateOpenUnresolved
	default:
		return StateOpenResolved
	}
}

// Handle returns a snapshot of the open handle, or false when closed.
func (v *VFS) Handle() (HandleInfo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle == nil {
		return HandleInfo{}, false
	}
	return HandleInfo{
		Token:            v.handle.token,
		URL:              v.handle.url,
		Size:             v.handle.size,
		PageSize:         v.handle.pageSize,
		RangesAdvertised: v.handle.acceptRanges,
		State:            v.stateLocked(),
	}, true
}

// currentLocked returns the open handle if it is the one opened. Tokens
// are reused by the engine, so identity is the handle itself.
func (v *VFS) currentLocked(opened *remoteFile) (*remoteFile, error) {
	if opened == nil || v.handle != opened {
		return nil, resultcode.ErrNoHandle
	}
	return v.handle, nil
}

// recoverInto converts a panic in a callback into the code for
// ErrInternal. Deferred first in every callback that does real work.
func (v *VFS) recoverInto(op resultcode.Operation, code *resultcode.Code) {
	if recovered := recover(); recovered != nil {
		err := fmt.Errorf("%w: %v", resultcode.ErrInternal, recovered)
		v.logger.Error("callback panicked", "operation", op.String(), "error", err)
		*code = resultcode.For(op, err)
	}
}
