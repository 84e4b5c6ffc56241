package ext4

import "time"

// inode is the 256-byte on-disk inode record, decoded down to the
// fields this reader interprets. Extended attributes, ACLs and the
// checksum tail are left unparsed.
type inode struct {
	mode       uint16
	uid        uint32
	gid        uint32
	size       uint64
	atime      time.Time
	ctime      time.Time
	mtime      time.Time
	linksCount uint16
	flags      uint32
	block      [extentBlockSize]byte
}

// inodeFromBytes decodes a single inode record. b must be at least
// inodeRecordSize bytes; any trailing bytes (extra inode size beyond
// 128, extended attributes) are ignored.
func inodeFromBytes(b []byte) (*inode, error) {
	if len(b) < inodeRecordSize {
		return nil, &shortRecordError{what: "inode", got: len(b), want: inodeRecordSize}
	}

	ino := &inode{
		mode:       le16(b, 0x0),
		uid:        uint32(le16(b, 0x2)) | uint32(le16(b, 0x78))<<16,
		gid:        uint32(le16(b, 0x18)) | uint32(le16(b, 0x7a))<<16,
		linksCount: le16(b, 0x1a),
		flags:      le32(b, 0x20),
	}

	sizeLo := le32(b, 0x4)
	sizeHi := le32(b, 0x6c)
	ino.size = combine64(sizeLo, sizeHi)

	ino.atime = time.Unix(int64(le32(b, 0x8)), 0).UTC()
	ino.ctime = time.Unix(int64(le32(b, 0xc)), 0).UTC()
	ino.mtime = time.Unix(int64(le32(b, 0x10)), 0).UTC()

	copy(ino.block[:], b[0x28:0x28+extentBlockSize])

	return ino, nil
}

// fileType returns the inode's type, the top nibble of its mode.
func (i *inode) fileType() fileType {
	return fileType(i.mode & modeTypeMask)
}

func (i *inode) isDir() bool     { return i.fileType() == fileTypeDirectory }
func (i *inode) isRegular() bool { return i.fileType() == fileTypeRegular }
func (i *inode) isSymlink() bool { return i.fileType() == fileTypeSymlink }

// permissions returns the inode's Unix permission bits.
func (i *inode) permissions() uint16 { return i.mode & modePermMask }

// usesExtents reports whether this inode's block map is an extent
// tree rather than the legacy indirect-block scheme. This reader only
// supports extent-mapped files; Mount already requires the filesystem
// feature, but individual inodes carry their own flag too.
func (i *inode) usesExtents() bool {
	const inodeFlagExtents = 0x80000
	return i.flags&inodeFlagExtents != 0
}

// fastSymlinkTarget returns the symlink target stored inline in the
// inode's block union, which ext4 does whenever the target fits in
// the available space (the 60-byte block union). The caller is responsible for
// knowing that this inode is a fast symlink.
func (i *inode) fastSymlinkTarget() string {
	n := i.size
	if n > uint64(len(i.block)) {
		n = uint64(len(i.block))
	}
	return string(i.block[:n])
}

// isFastSymlink reports whether the symlink target is stored inline
// in the block union rather than in a regular extent-mapped file
// body: it is inline whenever the target's size is at most 60 bytes,
// the size of the block union.
func (i *inode) isFastSymlink() bool {
	return i.size <= uint64(len(i.block))
}
