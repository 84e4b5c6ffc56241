package ext4

import (
	"encoding/binary"
	"testing"
)

func TestGroupDescriptor32Bit(t *testing.T) {
	b := make([]byte, groupDescriptorSize32)
	binary.LittleEndian.PutUint32(b[0x8:], 42)

	gd, err := groupDescriptorFromBytes(b, false)
	if err != nil {
		t.Fatalf("groupDescriptorFromBytes: %v", err)
	}
	if gd.InodeTableLoc() != 42 {
		t.Fatalf("unexpected inode table loc: %d", gd.InodeTableLoc())
	}
}

func TestGroupDescriptor64Bit(t *testing.T) {
	b := make([]byte, groupDescriptorSize64)
	binary.LittleEndian.PutUint32(b[0x8:], 0x1)
	binary.LittleEndian.PutUint32(b[0x28:], 0x2)

	gd, err := groupDescriptorFromBytes(b, true)
	if err != nil {
		t.Fatalf("groupDescriptorFromBytes: %v", err)
	}
	want := uint64(0x2)<<32 | 0x1
	if gd.InodeTableLoc() != want {
		t.Fatalf("unexpected inode table loc: %#x, want %#x", gd.InodeTableLoc(), want)
	}
}

func TestGroupDescriptorTooShort(t *testing.T) {
	_, err := groupDescriptorFromBytes(make([]byte, 4), false)
	if _, ok := err.(*shortRecordError); !ok {
		t.Fatalf("expected shortRecordError, got %T: %v", err, err)
	}
}
