package ext4

import "time"

// Metadata is a read-only view over a resolved inode's stat-like
// fields.
type Metadata struct {
	ino *inode
}

func newMetadata(ino *inode) Metadata { return Metadata{ino: ino} }

func (m Metadata) IsDir() bool     { return m.ino.isDir() }
func (m Metadata) IsRegular() bool { return m.ino.isRegular() }
func (m Metadata) IsSymlink() bool { return m.ino.isSymlink() }

// Len returns the file's size in bytes.
func (m Metadata) Len() uint64 { return m.ino.size }

func (m Metadata) UID() uint32 { return m.ino.uid }
func (m Metadata) GID() uint32 { return m.ino.gid }

// Permissions returns the Unix permission bits (mode & 0o777).
func (m Metadata) Permissions() uint16 { return m.ino.permissions() & 0o777 }

func (m Metadata) ModTime() time.Time    { return m.ino.mtime }
func (m Metadata) AccessTime() time.Time { return m.ino.atime }
func (m Metadata) ChangeTime() time.Time { return m.ino.ctime }
