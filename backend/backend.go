// Package backend provides the byte-source abstraction that filesystem
// packages read from. It does not know anything about any particular
// on-disk format; it just hands out random-access, seekable bytes.
package backend

import (
	"io"
	"os"
)

// Storage is a random-access, seekable byte source. It need not be
// thread-safe: callers are expected to serialize access.
type Storage interface {
	io.ReaderAt
	io.Seeker
	io.Closer
}

// OpenFile opens path as a disk image backed by a plain file. It works
// equally well for a raw image on a regular filesystem or for a block
// device node, but performs no device-specific probing; use OpenDevice
// if you need the underlying device's sector size.
func OpenFile(path string) (Storage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
