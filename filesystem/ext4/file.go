package ext4

import (
	"fmt"
	"io"

	"github.com/extfsgo/ext4ro/backend"
)

// File is a positional reader over a regular file's data, following
// its extent list. It is returned by FileSystem.Open, which hands it
// exclusive ownership of the filesystem's backend; the FileSystem
// itself returns ErrFileSystemConsumed from then on, whether or not
// this File has been closed.
type File struct {
	r         backend.Storage
	extents   []*extent
	size      uint64
	pos       uint64
	blockSize uint64
}

func newFile(r backend.Storage, extents []*extent, size, blockSize uint64) *File {
	return &File{r: r, extents: extents, size: size, blockSize: blockSize}
}

// Close releases the backend handed off to this File by
// FileSystem.Open.
func (f *File) Close() error {
	return f.r.Close()
}

// Read implements io.Reader, reading file data in logical order
// across however many extents are needed to fill buf.
func (f *File) Read(buf []byte) (int, error) {
	if len(buf) == 0 || f.pos >= f.size {
		return 0, nil
	}

	bufPos := 0
	var offset uint64

	for _, e := range f.extents {
		extentSize := uint64(e.length) * f.blockSize
		if f.pos >= offset+extentSize {
			offset += extentSize
			continue
		}

		fileRemain := f.size - f.pos
		bufRemain := uint64(len(buf) - bufPos)
		want := fileRemain
		if bufRemain < want {
			want = bufRemain
		}

		chunk, err := e.readBytes(f.r, f.blockSize, f.pos-offset, want)
		if err != nil {
			return bufPos, err
		}
		copy(buf[bufPos:], chunk)
		bufPos += len(chunk)
		f.pos += uint64(len(chunk))

		if bufPos >= len(buf) {
			return bufPos, nil
		}

		offset += extentSize
	}

	return bufPos, nil
}

// Seek implements io.Seeker. Only a non-positive offset is accepted
// for io.SeekEnd, matching the resolver the rest of this package
// relies on.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, fmt.Errorf("ext4: negative seek offset")
		}
		f.pos = uint64(offset)
	case io.SeekEnd:
		if offset > 0 {
			return 0, fmt.Errorf("ext4: expected non-positive offset for SeekEnd")
		}
		f.pos = f.size - uint64(-offset)
	case io.SeekCurrent:
		if offset < 0 {
			d := uint64(-offset)
			if d > f.pos {
				return 0, fmt.Errorf("ext4: seek before start of file")
			}
			f.pos -= d
		} else {
			f.pos += uint64(offset)
		}
	default:
		return 0, fmt.Errorf("ext4: invalid whence %d", whence)
	}
	return int64(f.pos), nil
}
