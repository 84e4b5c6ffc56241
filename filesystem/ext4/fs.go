// Package ext4 reads ext4 filesystem images. It supports navigating
// directories, reading regular file contents and symlink targets, and
// querying inode metadata, from any passive random-access byte
// source. It does not write, replay a journal, verify checksums, or
// support HTree-indexed directories, extended attributes, inline
// data, encryption or non-extent files.
package ext4

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/extfsgo/ext4ro/backend"
)

// FileSystem is a mounted, read-only view of an ext4 image.
//
// ReadDir and Open consume the FileSystem's backend: after either
// call succeeds, the FileSystem's other methods return
// ErrFileSystemConsumed until a new FileSystem is mounted. Read,
// ReadLink and Metadata only borrow the backend for the duration of
// a single call.
type FileSystem struct {
	backend          backend.Storage
	superblock       *Superblock
	groupDescriptors []*groupDescriptor
	log              logrus.FieldLogger
}

// Mount reads an ext4 superblock and block group descriptor table
// from b and returns a FileSystem ready to serve reads. b must not be
// used concurrently with the returned FileSystem.
func Mount(b backend.Storage, opts ...Option) (*FileSystem, error) {
	fs := &FileSystem{backend: b, log: defaultLogger()}
	for _, opt := range opts {
		opt(fs)
	}

	sbBytes := make([]byte, superblockSize)
	if _, err := b.ReadAt(sbBytes, superblockOffset); err != nil {
		return nil, fmt.Errorf("ext4: reading superblock: %w", err)
	}
	sb, err := superblockFromBytes(sbBytes)
	if err != nil {
		return nil, err
	}
	if !sb.FeatureExtents() {
		return nil, ErrUnsupported
	}
	fs.superblock = sb

	fs.log.WithFields(logrus.Fields{
		"block_size":   sb.BlockSize(),
		"block_count":  sb.BlockCount(),
		"inodes_count": sb.InodesCount(),
		"volume_label": sb.VolumeLabel(),
	}).Debug("ext4: mounted")

	descSize := groupDescriptorSize32
	if sb.Feature64Bit() {
		descSize = groupDescriptorSize64
	}
	groupCount := sb.GroupCount()
	descTableOffset := superblockOffset + int64(superblockSize)

	descs := make([]*groupDescriptor, 0, groupCount)
	for i := uint64(0); i < groupCount; i++ {
		buf := make([]byte, descSize)
		off := descTableOffset + int64(i)*int64(descSize)
		if _, err := b.ReadAt(buf, off); err != nil {
			return nil, fmt.Errorf("ext4: reading group descriptor %d: %w", i, err)
		}
		gd, err := groupDescriptorFromBytes(buf, sb.Feature64Bit())
		if err != nil {
			return nil, err
		}
		descs = append(descs, gd)
	}
	fs.groupDescriptors = descs

	return fs, nil
}

// getInode reads and decodes the inode numbered ino (1-based, per
// ext4 convention: there is no inode 0).
func (fs *FileSystem) getInode(ino uint64) (*inode, error) {
	groupNum := (ino - 1) / uint64(fs.superblock.inodesPerGroup)
	if groupNum >= uint64(len(fs.groupDescriptors)) {
		return nil, &BlockGroupDescriptorNotFoundError{Group: groupNum}
	}
	gd := fs.groupDescriptors[groupNum]

	indexInTable := (ino - 1) % uint64(fs.superblock.inodesPerGroup)
	pos := int64(gd.InodeTableLoc()*fs.superblock.BlockSize() + indexInTable*uint64(fs.superblock.InodeSize()))

	buf := make([]byte, inodeRecordSize)
	if _, err := fs.backend.ReadAt(buf, pos); err != nil {
		return nil, fmt.Errorf("ext4: reading inode %d: %w", ino, err)
	}

	fs.log.WithFields(logrus.Fields{"ino": ino, "pos": pos}).Debug("ext4: fetched inode")

	return inodeFromBytes(buf)
}

// extentsOf walks the extent tree rooted in ino's block union and
// returns its flattened leaf list.
func (fs *FileSystem) extentsOf(ino *inode) ([]*extent, error) {
	if !ino.usesExtents() {
		return nil, ErrUnsupported
	}
	return readExtents(fs.log, fs.backend, fs.superblock.BlockSize(), ino.block[:])
}

// readAllBytes reads an inode's entire data across however many
// extents it spans.
func (fs *FileSystem) readAllBytes(ino *inode) ([]byte, error) {
	extents, err := fs.extentsOf(ino)
	if err != nil {
		return nil, err
	}

	blockSize := fs.superblock.BlockSize()
	remaining := ino.size
	var data []byte
	for _, e := range extents {
		if remaining == 0 {
			break
		}
		chunk, err := e.readBytes(fs.backend, blockSize, 0, remaining)
		if err != nil {
			return nil, err
		}
		if uint64(len(chunk)) >= remaining {
			remaining = 0
		} else {
			remaining -= uint64(len(chunk))
		}
		data = append(data, chunk...)
	}
	return data, nil
}

// ReadDir resolves path to a directory and returns an iterator over
// its entries, skipping "." and "..". This consumes the FileSystem.
func (fs *FileSystem) ReadDir(path string) (*ReadDir, error) {
	if fs.backend == nil {
		return nil, ErrFileSystemConsumed
	}

	ino, err := fs.resolveInodeByPath(path)
	if err != nil {
		return nil, err
	}
	if !ino.isDir() {
		return nil, &IsNotDirectoryError{Path: path}
	}

	extents, err := fs.extentsOf(ino)
	if err != nil {
		return nil, err
	}

	b := fs.backend
	fs.backend = nil
	return newReadDir(b, fs.superblock.BlockSize(), fs.superblock.FeatureFiletype(), extents), nil
}

// Open resolves path to a regular file and returns a positional
// reader over its contents. This consumes the FileSystem.
func (fs *FileSystem) Open(path string) (*File, error) {
	if fs.backend == nil {
		return nil, ErrFileSystemConsumed
	}

	ino, err := fs.resolveInodeByPath(path)
	if err != nil {
		return nil, err
	}
	if !ino.isRegular() {
		return nil, &IsNotRegularError{Path: path}
	}

	extents, err := fs.extentsOf(ino)
	if err != nil {
		return nil, err
	}

	b := fs.backend
	fs.backend = nil
	return newFile(b, extents, ino.size, fs.superblock.BlockSize()), nil
}

// Read resolves path to a regular file and returns its entire
// contents. This borrows the FileSystem; it remains usable afterward.
func (fs *FileSystem) Read(path string) ([]byte, error) {
	if fs.backend == nil {
		return nil, ErrFileSystemConsumed
	}

	ino, err := fs.resolveInodeByPath(path)
	if err != nil {
		return nil, err
	}
	if !ino.isRegular() {
		return nil, &IsNotRegularError{Path: path}
	}

	return fs.readAllBytes(ino)
}

// ReadLink resolves path to a symlink and returns its target. This
// borrows the FileSystem; it remains usable afterward.
func (fs *FileSystem) ReadLink(path string) (string, error) {
	if fs.backend == nil {
		return "", ErrFileSystemConsumed
	}

	ino, err := fs.resolveInodeByPath(path)
	if err != nil {
		return "", err
	}
	if !ino.isSymlink() {
		return "", &IsNotSymlinkError{Path: path}
	}

	if ino.isFastSymlink() {
		return ino.fastSymlinkTarget(), nil
	}

	data, err := fs.readAllBytes(ino)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Metadata resolves path to any inode and returns its stat-like view.
// This borrows the FileSystem; it remains usable afterward.
func (fs *FileSystem) Metadata(path string) (Metadata, error) {
	if fs.backend == nil {
		return Metadata{}, ErrFileSystemConsumed
	}

	ino, err := fs.resolveInodeByPath(path)
	if err != nil {
		return Metadata{}, err
	}
	return newMetadata(ino), nil
}
