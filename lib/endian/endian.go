// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package endian decodes multi-byte header fields.
//
// Database headers store integers big-endian, and [BigEndian16] decodes
// them without regard to the host. The package also keeps the
// host-order correction that code loading a field into a native
// integer would need; its tests pin that it agrees with [BigEndian16]
// on every host.
package endian

import "encoding/binary"

// hostLittleEndian is computed once from a fixed bit pattern: the
// bytes {1, 0} read as a native uint16 equal 1 only on a little-endian
// host.
var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// normalize16 converts a big-endian field that was loaded as a
// host-order uint16 into its numeric value. The bytes are swapped only
// when littleEndianHost is true.
func normalize16(hostLoaded uint16, littleEndianHost bool) uint16 {
	if !littleEndianHost {
		return hostLoaded
	}
	return hostLoaded>>8 | hostLoaded<<8
}

// BigEndian16 decodes the first two bytes of raw as a big-endian
// uint16. Panics if raw is shorter than two bytes.
func BigEndian16(raw []byte) uint16 {
	return binary.BigEndian.Uint16(raw)
}
