package ext4

import (
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
)

// featureFlags is the subset of the superblock's incompat feature
// word that this reader consults. RECOVER and FLEX_BG are parsed but
// are purely informational: this reader never replays a journal and
// never special-cases flex block group layout.
type featureFlags struct {
	filetype bool
	recover  bool
	extents  bool
	is64Bit  bool
	flexBG   bool
}

func parseFeatureFlags(incompat uint32) featureFlags {
	has := func(f feature) bool { return incompat&uint32(f) == uint32(f) }
	return featureFlags{
		filetype: has(featureIncompatFiletype),
		recover:  has(featureIncompatRecover),
		extents:  has(featureIncompatExtents),
		is64Bit:  has(featureIncompat64Bit),
		flexBG:   has(featureIncompatFlexBG),
	}
}

// Superblock is the ext4 superblock: the filesystem's global
// descriptor, read once at mount time.
type Superblock struct {
	inodesCount    uint32
	blocksCount    uint64
	blocksPerGroup uint32
	inodesPerGroup uint32
	logBlockSize   uint32
	inodeSize      uint16
	features       featureFlags
	uuid           uuid.UUID
	journalUUID    uuid.UUID
	volumeLabel    string
	mountTime      time.Time
	writeTime      time.Time
	lastCheckTime  time.Time
	mkfsTime       time.Time
	groupDescSize  uint16
}

// superblockFromBytes decodes a Superblock from exactly superblockSize
// bytes, the way the spec requires: the full on-disk record is read
// (callers must supply the whole 1024-byte record) even though only a
// handful of fields are interpreted here.
func superblockFromBytes(b []byte) (*Superblock, error) {
	if len(b) < superblockSize {
		return nil, fmt.Errorf("ext4: superblock record too short: %d bytes, want %d", len(b), superblockSize)
	}

	magic := le16(b, superblockMagicOff)
	if magic != superblockMagic {
		return nil, &InvalidSuperblockMagicError{Magic: magic}
	}

	sb := &Superblock{
		inodesCount:    le32(b, 0x0),
		blocksPerGroup: le32(b, 0x20),
		inodesPerGroup: le32(b, 0x28),
		logBlockSize:   le32(b, 0x18),
		inodeSize:      le16(b, 0x58),
		groupDescSize:  le16(b, 0xfe),
	}
	sb.features = parseFeatureFlags(le32(b, 0x60))

	blocksLo := le32(b, 0x4)
	var blocksHi uint32
	if sb.features.is64Bit {
		blocksHi = le32(b, 0x150)
	}
	sb.blocksCount = combine64(blocksLo, blocksHi)

	sb.mountTime = time.Unix(int64(le32(b, 0x2c)), 0).UTC()
	sb.writeTime = time.Unix(int64(le32(b, 0x30)), 0).UTC()
	sb.lastCheckTime = time.Unix(int64(le32(b, 0x40)), 0).UTC()
	sb.mkfsTime = time.Unix(int64(le32(b, 0x108)), 0).UTC()

	if id, err := uuid.FromBytes(b[0x68:0x78]); err == nil {
		sb.uuid = id
	}
	if id, err := uuid.FromBytes(b[0xd0:0xe0]); err == nil {
		sb.journalUUID = id
	}
	sb.volumeLabel = cString(b[0x78:0x88])

	if err := sb.validateGroupCount(); err != nil {
		return nil, err
	}

	return sb, nil
}

// validateGroupCount enforces that the group count implied by the
// block count agrees with the group count implied by the inode count.
// Both use the standard ceiling formula here; the off-by-one variant
// used elsewhere for sizing the descriptor table is intentionally not
// used in this check (see Superblock.GroupCount).
func (sb *Superblock) validateGroupCount() error {
	fromBlocks := ceilDiv(sb.blocksCount, uint64(sb.blocksPerGroup))
	fromInodes := ceilDiv(uint64(sb.inodesCount), uint64(sb.inodesPerGroup))
	if fromBlocks != fromInodes {
		return &BlockGroupCountMismatchError{FromBlocks: fromBlocks, FromInodes: fromInodes}
	}
	return nil
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// BlockSize returns the filesystem's block size in bytes: 1024 shifted
// left by the superblock's log_block_size.
func (sb *Superblock) BlockSize() uint64 { return 1024 << sb.logBlockSize }

// BlockCount returns the total number of blocks in the filesystem.
func (sb *Superblock) BlockCount() uint64 { return sb.blocksCount }

// InodesCount returns the total number of inodes in the filesystem.
func (sb *Superblock) InodesCount() uint32 { return sb.inodesCount }

// InodeSize returns the on-disk size of a single inode record in
// bytes, as stored in the superblock. The reader decodes only the
// first 256 bytes of each record; larger inode sizes simply leave more
// trailing bytes unread per inode.
func (sb *Superblock) InodeSize() uint16 { return sb.inodeSize }

// GroupCount returns the number of block group descriptors to read.
// This preserves the source formula's off-by-one quirk
// (block_count/blocks_per_group + 1) rather than a strict ceiling;
// see SPEC_FULL.md §10 and DESIGN.md for why this is kept as-is.
func (sb *Superblock) GroupCount() uint64 {
	return sb.blocksCount/uint64(sb.blocksPerGroup) + 1
}

// FeatureFiletype reports whether directory entries carry a file-type
// byte and an 8-bit name length (true) or a 16-bit name length with
// no file-type byte (false).
func (sb *Superblock) FeatureFiletype() bool { return sb.features.filetype }

// FeatureExtents reports whether inodes store their block map as an
// extent tree. Mount fails if this is false.
func (sb *Superblock) FeatureExtents() bool { return sb.features.extents }

// Feature64Bit reports whether group descriptors are the 64-byte
// variant with _hi halves.
func (sb *Superblock) Feature64Bit() bool { return sb.features.is64Bit }

// FeatureRecover reports the on-disk journal-recovery-needed flag.
// This reader never replays a journal; the flag is informational.
func (sb *Superblock) FeatureRecover() bool { return sb.features.recover }

// FeatureFlexBG reports whether the filesystem uses flexible block
// groups. This reader does not special-case flex group layout; the
// flag is informational.
func (sb *Superblock) FeatureFlexBG() bool { return sb.features.flexBG }

// UUID returns the filesystem's volume UUID.
func (sb *Superblock) UUID() uuid.UUID { return sb.uuid }

// JournalUUID returns the UUID of the external journal superblock, if
// any. This reader never opens or replays a journal; the UUID is
// exposed only as metadata.
func (sb *Superblock) JournalUUID() uuid.UUID { return sb.journalUUID }

// VolumeLabel returns the filesystem's volume name.
func (sb *Superblock) VolumeLabel() string { return sb.volumeLabel }

// MountTime, WriteTime, LastCheckTime and MkfsTime expose the
// superblock's housekeeping timestamps for diagnostics; no operation's
// control flow depends on them.
func (sb *Superblock) MountTime() time.Time     { return sb.mountTime }
func (sb *Superblock) WriteTime() time.Time     { return sb.writeTime }
func (sb *Superblock) LastCheckTime() time.Time { return sb.lastCheckTime }
func (sb *Superblock) MkfsTime() time.Time      { return sb.mkfsTime }

// cString trims a fixed-width on-disk byte field at its first NUL, the
// way ext4's ASCII-ish fixed fields (volume label, last-mounted path)
// are conventionally stored.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
