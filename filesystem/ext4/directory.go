package ext4

import (
	"io"
)

// ReadDir iterates the entries of a directory, in on-disk order,
// skipping "." and "..". It is returned by FileSystem.ReadDir, which
// hands it exclusive ownership of the filesystem's backend; the
// FileSystem itself returns ErrFileSystemConsumed from then on.
type ReadDir struct {
	r         io.ReaderAt
	blockSize uint64
	filetype  bool

	extents []*extent
	idx     int
	offset  uint64
}

func newReadDir(r io.ReaderAt, blockSize uint64, filetype bool, extents []*extent) *ReadDir {
	return &ReadDir{r: r, blockSize: blockSize, filetype: filetype, extents: extents}
}

// readEntryAt reads a single directory entry out of extent e at the
// given byte offset within the extent's data, returning the entry and
// the offset immediately following it. It returns io.EOF once offset
// reaches the end of the extent.
func (rd *ReadDir) readEntryAt(e *extent, offset uint64) (DirEntry, uint64, error) {
	size := uint64(e.length) * rd.blockSize
	if offset >= size {
		return DirEntry{}, 0, io.EOF
	}

	pos := int64(e.blockLoc()*rd.blockSize + offset)
	header := make([]byte, dirEntryMinHeaderLen)
	if _, err := rd.r.ReadAt(header, pos); err != nil {
		return DirEntry{}, 0, err
	}

	// dirEntryMinHeaderLen only covers the fixed 8-byte prefix (inode,
	// rec_len, name length); re-read the full record once rec_len is known.
	recLen := le16(header, 0x4)
	if uint64(recLen) == 0 {
		return DirEntry{}, 0, io.EOF
	}
	buf := make([]byte, recLen)
	if _, err := rd.r.ReadAt(buf, pos); err != nil {
		return DirEntry{}, 0, err
	}

	entry, err := dirEntryFromBytes(buf, rd.filetype)
	if err != nil {
		return DirEntry{}, 0, err
	}

	return entry, offset + uint64(entry.RecLen), nil
}

// Next returns the next directory entry, or io.EOF once the directory
// is exhausted.
func (rd *ReadDir) Next() (DirEntry, error) {
	for {
		if rd.idx >= len(rd.extents) {
			return DirEntry{}, io.EOF
		}
		e := rd.extents[rd.idx]

		entry, newOffset, err := rd.readEntryAt(e, rd.offset)
		if err == io.EOF {
			rd.offset = 0
			rd.idx++
			continue
		}
		if err != nil {
			return DirEntry{}, err
		}

		if entry.IsTail {
			rd.offset = 0
			rd.idx++
			continue
		}

		// Roll forward to the next extent once the cursor has reached
		// the end of this one's data (length in blocks times block size).
		if newOffset >= uint64(e.length)*rd.blockSize {
			rd.offset = 0
			rd.idx++
		} else {
			rd.offset = newOffset
		}

		if entry.isDot() || entry.isDotDot() {
			continue
		}

		return entry, nil
	}
}
