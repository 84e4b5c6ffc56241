package ext4

import (
	"encoding/binary"
	"testing"
)

func buildSuperblockBytes(t *testing.T, blocksCount, inodesCount, blocksPerGroup, inodesPerGroup uint32) []byte {
	t.Helper()
	b := make([]byte, superblockSize)
	binary.LittleEndian.PutUint32(b[0x0:], inodesCount)
	binary.LittleEndian.PutUint32(b[0x4:], blocksCount)
	binary.LittleEndian.PutUint32(b[0x20:], blocksPerGroup)
	binary.LittleEndian.PutUint32(b[0x28:], inodesPerGroup)
	binary.LittleEndian.PutUint16(b[0x58:], 256)
	binary.LittleEndian.PutUint32(b[0x60:], uint32(featureIncompatFiletype|featureIncompatExtents))
	binary.LittleEndian.PutUint16(b[superblockMagicOff:], superblockMagic)
	return b
}

func TestSuperblockFromBytes(t *testing.T) {
	b := buildSuperblockBytes(t, 100, 32, 8192, 32)
	sb, err := superblockFromBytes(b)
	if err != nil {
		t.Fatalf("superblockFromBytes: %v", err)
	}
	if sb.BlockSize() != 1024 {
		t.Fatalf("unexpected block size: %d", sb.BlockSize())
	}
	if sb.BlockCount() != 100 {
		t.Fatalf("unexpected block count: %d", sb.BlockCount())
	}
	if !sb.FeatureExtents() || !sb.FeatureFiletype() {
		t.Fatalf("expected extents and filetype features")
	}
}

func TestSuperblockRejectsBadMagic(t *testing.T) {
	b := buildSuperblockBytes(t, 100, 32, 8192, 32)
	b[superblockMagicOff] = 0
	b[superblockMagicOff+1] = 0
	if _, err := superblockFromBytes(b); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestSuperblockGroupCountMismatch(t *testing.T) {
	// blocksPerGroup=10 with blocksCount=25 implies 3 groups from
	// blocks, but inodesPerGroup=32 with inodesCount=32 implies 1
	// group from inodes: mismatch.
	b := buildSuperblockBytes(t, 25, 32, 10, 32)
	_, err := superblockFromBytes(b)
	if _, ok := err.(*BlockGroupCountMismatchError); !ok {
		t.Fatalf("expected BlockGroupCountMismatchError, got %T: %v", err, err)
	}
}

func TestSuperblockGroupCountOffByOneQuirk(t *testing.T) {
	// blocksCount/blocksPerGroup + 1, preserved as found: exactly
	// divisible block counts still add one extra group.
	b := buildSuperblockBytes(t, 8192, 32, 8192, 32)
	sb, err := superblockFromBytes(b)
	if err != nil {
		t.Fatalf("superblockFromBytes: %v", err)
	}
	if sb.GroupCount() != 2 {
		t.Fatalf("GroupCount() = %d, want 2 (off-by-one quirk)", sb.GroupCount())
	}
}
