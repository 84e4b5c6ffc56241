//go:build !linux

package backend

import (
	"errors"
	"os"
)

// getLogicalSectorSize is unsupported outside Linux; OpenDevice falls
// back to treating the device like a plain image file.
func getLogicalSectorSize(f *os.File) (int64, error) {
	return 0, errors.New("block device sector size probing not supported on this platform")
}
