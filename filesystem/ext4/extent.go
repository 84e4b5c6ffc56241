package ext4

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// extentHeader precedes every node of an inode's extent tree,
// whether that node lives inline in the inode or in a separate
// block.
type extentHeader struct {
	entries uint16
	depth   uint16
}

func extentHeaderFromBytes(b []byte) (*extentHeader, error) {
	if len(b) < extentHeaderLen {
		return nil, &shortRecordError{what: "extent header", got: len(b), want: extentHeaderLen}
	}
	magic := le16(b, 0x0)
	if magic != extentHeaderMagic {
		return nil, &InvalidExtentHeaderMagicError{Magic: magic}
	}
	return &extentHeader{
		entries: le16(b, 0x2),
		depth:   le16(b, 0x6),
	}, nil
}

// extentIndex is an internal node of the extent tree: it names the
// block holding the next level down.
type extentIndex struct {
	leaf uint64
}

func extentIndexFromBytes(b []byte) *extentIndex {
	leafLo := le32(b, 0x4)
	leafHi := le16(b, 0x8)
	return &extentIndex{leaf: combine64(leafLo, uint32(leafHi))}
}

// extent is a leaf node of the extent tree: a contiguous run of
// logical file blocks mapped to a contiguous run of physical blocks.
type extent struct {
	length uint16
	start  uint64
}

func extentFromBytes(b []byte) *extent {
	length := le16(b, 0x4)
	startLo := le32(b, 0x8)
	startHi := le16(b, 0x6)
	return &extent{
		length: length,
		start:  combine64(startLo, uint32(startHi)),
	}
}

// blockLoc returns the physical block number the extent points to.
func (e *extent) blockLoc() uint64 { return e.start }

// readBytes reads up to max bytes from the extent, starting start
// bytes into the extent's data, from the backing reader.
func (e *extent) readBytes(r io.ReaderAt, blockSize uint64, start, max uint64) ([]byte, error) {
	pos := int64(e.blockLoc()*blockSize + start)
	size := uint64(e.length) * blockSize
	if size > start {
		size -= start
	} else {
		size = 0
	}
	if max < size {
		size = max
	}

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, pos); err != nil {
		return nil, err
	}
	return buf, nil
}

// extentOrIndex is one parsed entry from an extent tree node: either
// a leaf (extent) or an internal pointer (extentIndex).
type extentOrIndex struct {
	leaf  *extent
	index *extentIndex
}

// parseExtentNode decodes one extent tree node (a header followed by
// its entries) from b.
func parseExtentNode(log logrus.FieldLogger, b []byte) (*extentHeader, []extentOrIndex, error) {
	h, err := extentHeaderFromBytes(b)
	if err != nil {
		log.WithField("err", err).Debug("ext4: extent header invalid")
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"depth":   h.depth,
		"entries": h.entries,
	}).Debug("ext4: extent node decoded")

	var out []extentOrIndex
	for i := 0; i < int(h.entries); i++ {
		off := extentHeaderLen + i*extentRecordLen
		if off+extentRecordLen > len(b) {
			return nil, nil, fmt.Errorf("ext4: extent node truncated at entry %d", i)
		}
		rec := b[off : off+extentRecordLen]
		if h.depth == 0 {
			out = append(out, extentOrIndex{leaf: extentFromBytes(rec)})
		} else {
			out = append(out, extentOrIndex{index: extentIndexFromBytes(rec)})
		}
	}
	return h, out, nil
}

// readExtents walks an inode's extent tree breadth-first, starting
// from the root embedded in the inode's block union, and returns the
// flattened, in-order list of leaf extents.
func readExtents(log logrus.FieldLogger, r io.ReaderAt, blockSize uint64, root []byte) ([]*extent, error) {
	_, entries, err := parseExtentNode(log, root)
	if err != nil {
		return nil, err
	}

	queue := entries
	var result []*extent
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.leaf != nil {
			result = append(result, item.leaf)
			continue
		}

		pos := int64(item.index.leaf * blockSize)
		buf := make([]byte, blockSize)
		if _, err := r.ReadAt(buf, pos); err != nil {
			return nil, err
		}
		_, children, err := parseExtentNode(log, buf)
		if err != nil {
			return nil, err
		}
		queue = append(queue, children...)
	}

	log.WithField("leaf_count", len(result)).Debug("ext4: extent tree walked")
	return result, nil
}
