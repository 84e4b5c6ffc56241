package ext4

import "encoding/binary"

// combine64 joins a _lo/_hi pair of on-disk halves into a single
// 64-bit value, the way every scattered 32/64-bit field in ext4's
// on-disk structures is assembled: (hi << 32) | lo.
func combine64(lo, hi uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// le16 and le32 read a little-endian field out of b at the given
// offset. ext4 is defined as entirely little-endian on disk; this is
// the only place that endianness is asserted.
func le16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func le32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}
