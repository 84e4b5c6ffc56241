package ext4

import "fmt"

// groupDescriptor describes one block group: where its inode table
// and inode/block bitmaps live. Only the inode table location is
// actually consulted by this reader; the bitmap fields are decoded
// because they live in the same fixed-size record, not because
// anything reads them.
type groupDescriptor struct {
	blockBitmapLoc uint64
	inodeBitmapLoc uint64
	inodeTableLoc  uint64
}

// groupDescriptorFromBytes decodes a single group descriptor record,
// which is 32 bytes unless the 64BIT incompat feature is set, in
// which case it is 64 bytes and carries _hi halves for the three
// location fields.
func groupDescriptorFromBytes(b []byte, is64Bit bool) (*groupDescriptor, error) {
	size := groupDescriptorSize32
	if is64Bit {
		size = groupDescriptorSize64
	}
	if len(b) < size {
		return nil, &shortRecordError{what: "group descriptor", got: len(b), want: size}
	}

	blockBitmapLo := le32(b, 0x0)
	inodeBitmapLo := le32(b, 0x4)
	inodeTableLo := le32(b, 0x8)

	var blockBitmapHi, inodeBitmapHi, inodeTableHi uint32
	if is64Bit {
		blockBitmapHi = le32(b, 0x20)
		inodeBitmapHi = le32(b, 0x24)
		inodeTableHi = le32(b, 0x28)
	}

	return &groupDescriptor{
		blockBitmapLoc: combine64(blockBitmapLo, blockBitmapHi),
		inodeBitmapLoc: combine64(inodeBitmapLo, inodeBitmapHi),
		inodeTableLoc:  combine64(inodeTableLo, inodeTableHi),
	}, nil
}

// InodeTableLoc returns the block number of the group's inode table.
func (gd *groupDescriptor) InodeTableLoc() uint64 { return gd.inodeTableLoc }

type shortRecordError struct {
	what      string
	got, want int
}

func (e *shortRecordError) Error() string {
	return fmt.Sprintf("ext4: %s record too short: %d bytes, want %d", e.what, e.got, e.want)
}
