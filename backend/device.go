package backend

import "os"

// Device wraps a Storage opened from a device node or disk image,
// along with the logical sector size reported by the device, if any
// could be determined. A plain disk-image file has no meaningful
// sector size, so LogicalSectorSize is 0 in that case.
type Device struct {
	Storage
	LogicalSectorSize int64
}

// OpenDevice opens path for reading and, on platforms where it is
// supported, probes the logical sector size of the underlying block
// device via an ioctl. If path is a regular file rather than a block
// device, LogicalSectorSize is left at 0 and no error is returned.
func OpenDevice(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	d := &Device{Storage: f}
	if info.Mode()&os.ModeDevice != 0 {
		sectorSize, err := getLogicalSectorSize(f)
		if err == nil {
			d.LogicalSectorSize = sectorSize
		}
	}
	return d, nil
}
