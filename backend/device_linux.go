//go:build linux

package backend

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// blkSSZGet is BLKSSZGET from linux/fs.h: get logical block (sector) size.
const blkSSZGet = 0x1268

// getLogicalSectorSize returns the logical sector size of the block
// device backing f, via ioctl(BLKSSZGET), the same call the wider
// go-diskfs tooling uses when opening raw devices.
func getLogicalSectorSize(f *os.File) (int64, error) {
	size, err := unix.IoctlGetInt(int(f.Fd()), blkSSZGet)
	if err != nil {
		return 0, fmt.Errorf("unable to get device logical sector size: %w", err)
	}
	return int64(size), nil
}
