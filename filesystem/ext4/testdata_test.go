package ext4

import (
	"bytes"
	"encoding/binary"
)

// memBackend adapts a bytes.Reader to backend.Storage for tests that
// don't need a real file on disk.
type memBackend struct {
	*bytes.Reader
}

func (memBackend) Close() error { return nil }

func newMemBackend(b []byte) memBackend {
	return memBackend{bytes.NewReader(b)}
}

const fixtureBlockSize = 1024

// buildFixtureImage assembles a minimal 14-block ext4 image in
// memory:
//
//	block 0  boot sector, unused
//	block 1  superblock
//	block 2  group descriptor table
//	blocks 3-10  inode table (32 inodes x 256 bytes)
//	block 11 root directory data
//	block 12 hello.txt data
//	block 13 test.txt.lnk target data (extent-mapped, >60 bytes)
//
// The root directory contains "hello.txt" (inode 11, a regular file
// holding "hello\n"), "hello.txt.lnk" (inode 12, a fast symlink to
// "hello.txt"), and "test.txt.lnk" (inode 13, a symlink whose target
// exceeds the 60-byte inline budget and so is stored as an
// extent-mapped file body), plus the usual "." and ".." entries and a
// tail sentinel. Directory entries use the file-type format.
func buildFixtureImage() []byte {
	const (
		blocksCount    = 14
		inodesCount    = 32
		inodesPerGroup = 32
		blocksPerGroup = 8192
		inodeTableLoc  = 3
		rootDirBlock   = 11
		helloDataBlock = 12
		longLinkBlock  = 13

		inoRoot     = 2
		inoHello    = 11
		inoLink     = 12
		inoLongLink = 13
	)

	img := make([]byte, blocksCount*fixtureBlockSize)

	// superblock, block 1
	sb := img[1*fixtureBlockSize : 2*fixtureBlockSize]
	binary.LittleEndian.PutUint32(sb[0x0:], inodesCount)
	binary.LittleEndian.PutUint32(sb[0x4:], blocksCount)
	binary.LittleEndian.PutUint32(sb[0x18:], 0) // log_block_size=0 -> 1024
	binary.LittleEndian.PutUint32(sb[0x20:], blocksPerGroup)
	binary.LittleEndian.PutUint32(sb[0x28:], inodesPerGroup)
	binary.LittleEndian.PutUint16(sb[0x58:], 256) // inode size
	binary.LittleEndian.PutUint32(sb[0x60:], uint32(featureIncompatFiletype|featureIncompatExtents))
	binary.LittleEndian.PutUint16(sb[superblockMagicOff:], superblockMagic)

	// group descriptor table, block 2
	gdt := img[2*fixtureBlockSize : 3*fixtureBlockSize]
	binary.LittleEndian.PutUint32(gdt[0x8:], inodeTableLoc)

	inodeAt := func(ino uint32) []byte {
		tableOff := inodeTableLoc * fixtureBlockSize
		off := tableOff + int(ino-1)*inodeRecordSize
		return img[off : off+inodeRecordSize]
	}

	writeExtentRoot := func(rec []byte, physBlock uint32) {
		binary.LittleEndian.PutUint16(rec[0x0:], extentHeaderMagic)
		binary.LittleEndian.PutUint16(rec[0x2:], 1) // entries
		binary.LittleEndian.PutUint16(rec[0x4:], 4) // max
		binary.LittleEndian.PutUint16(rec[0x6:], 0) // depth
		e := rec[extentHeaderLen:]
		binary.LittleEndian.PutUint32(e[0x0:], 0) // logical block
		binary.LittleEndian.PutUint16(e[0x4:], 1) // length
		binary.LittleEndian.PutUint16(e[0x6:], 0) // start_hi
		binary.LittleEndian.PutUint32(e[0x8:], physBlock)
	}

	// root directory inode
	root := inodeAt(inoRoot)
	binary.LittleEndian.PutUint16(root[0x0:], uint16(fileTypeDirectory)|0o755)
	binary.LittleEndian.PutUint32(root[0x4:], fixtureBlockSize) // size
	binary.LittleEndian.PutUint32(root[0x20:], 0x80000)         // EXTENTS flag
	writeExtentRoot(root[0x28:], rootDirBlock)

	// hello.txt inode
	hello := inodeAt(inoHello)
	binary.LittleEndian.PutUint16(hello[0x0:], uint16(fileTypeRegular)|0o644)
	binary.LittleEndian.PutUint32(hello[0x4:], 6) // "hello\n"
	binary.LittleEndian.PutUint32(hello[0x20:], 0x80000)
	writeExtentRoot(hello[0x28:], helloDataBlock)

	// hello.txt.lnk inode, fast symlink
	link := inodeAt(inoLink)
	target := "hello.txt"
	binary.LittleEndian.PutUint16(link[0x0:], uint16(fileTypeSymlink)|0o777)
	binary.LittleEndian.PutUint32(link[0x4:], uint32(len(target)))
	copy(link[0x28:], target)

	// test.txt.lnk inode, extent-mapped symlink (target > 60 bytes)
	longTarget := "a1234567890/b1234567890/c1234567890/d1234567890/e1234567890/f1234567890/test.txt"
	longLink := inodeAt(inoLongLink)
	binary.LittleEndian.PutUint16(longLink[0x0:], uint16(fileTypeSymlink)|0o777)
	binary.LittleEndian.PutUint32(longLink[0x4:], uint32(len(longTarget)))
	binary.LittleEndian.PutUint32(longLink[0x20:], 0x80000)
	writeExtentRoot(longLink[0x28:], longLinkBlock)

	// root directory data, block 11
	dir := img[rootDirBlock*fixtureBlockSize : (rootDirBlock+1)*fixtureBlockSize]
	pos := 0
	writeDirEntry := func(ino uint32, name string, ft byte) {
		recLen := align4(8 + len(name))
		binary.LittleEndian.PutUint32(dir[pos:], ino)
		binary.LittleEndian.PutUint16(dir[pos+4:], uint16(recLen))
		dir[pos+6] = byte(len(name))
		dir[pos+7] = ft
		copy(dir[pos+8:], name)
		pos += recLen
	}
	writeDirEntry(inoRoot, ".", byte(direntDir))
	writeDirEntry(inoRoot, "..", byte(direntDir))
	writeDirEntry(inoHello, "hello.txt", byte(direntRegular))
	writeDirEntry(inoLink, "hello.txt.lnk", byte(direntSymlink))
	writeDirEntry(inoLongLink, "test.txt.lnk", byte(direntSymlink))
	// tail sentinel
	binary.LittleEndian.PutUint32(dir[pos:], 0)
	binary.LittleEndian.PutUint16(dir[pos+4:], uint16(dirEntryTailRecLen))
	dir[pos+6] = 0
	dir[pos+7] = dirEntryTailFileType

	// hello.txt data, block 12
	data := img[helloDataBlock*fixtureBlockSize : (helloDataBlock+1)*fixtureBlockSize]
	copy(data, "hello\n")

	// test.txt.lnk target data, block 13
	longData := img[longLinkBlock*fixtureBlockSize : (longLinkBlock+1)*fixtureBlockSize]
	copy(longData, longTarget)

	return img
}

func align4(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}
