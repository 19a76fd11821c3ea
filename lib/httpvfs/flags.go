// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package httpvfs

import "fmt"

// Token identifies an open file in the engine's terms: the engine
// allocates the file object and passes its identity to Open.
type Token string

// accessProbeToken identifies the throwaway handle Access opens.
const accessProbeToken Token = "access-probe"

// OpenFlag is a bit set of open flags, numerically equal to the
// engine's SQLITE_OPEN_* values.
type OpenFlag int

const (
	OpenReadOnly  OpenFlag = 0x00000001
	OpenReadWrite OpenFlag = 0x00000002
	OpenCreate    OpenFlag = 0x00000004
	OpenURI       OpenFlag = 0x00000040
	OpenMainDB    OpenFlag = 0x00000100
)

// AccessFlag selects the question Access answers.
type AccessFlag int

const (
	AccessExists    AccessFlag = 0
	AccessReadWrite AccessFlag = 1
	AccessRead      AccessFlag = 2
)

// LockLevel is the engine's file lock level. Locks are accepted and
// ignored: there are no writers to exclude.
type LockLevel int

const (
	LockNone      LockLevel = 0
	LockShared    LockLevel = 1
	LockReserved  LockLevel = 2
	LockPending   LockLevel = 3
	LockExclusive LockLevel = 4
)

// IOCap is a bit set of device characteristics.
type IOCap int

// IOCapImmutable tells the engine the file never changes while open.
const IOCapImmutable IOCap = 0x00002000

// NominalSectorSize is reported by File.SectorSize.
const NominalSectorSize = 512

// State is the lifecycle state of a VFS's handle.
//
// A handle becomes StateOpenResolved as soon as its page-size probe
// succeeds, even when the read that triggered the probe is then
// rejected for alignment. A failed probe leaves it StateOpenUnresolved
// and the next read probes again.
type State int

const (
	StateClosed State = iota
	StateOpenUnresolved
	StateOpenResolved
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenUnresolved:
		return "open-unresolved"
	case StateOpenResolved:
		return "open-resolved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
