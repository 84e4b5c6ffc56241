package ext4

import "fmt"

// direntFileType is the file-type byte carried by the newer directory
// entry format when the filetype incompat feature is set.
type direntFileType uint8

const (
	direntUnknown  direntFileType = 0x0
	direntRegular  direntFileType = 0x1
	direntDir      direntFileType = 0x2
	direntCharDev  direntFileType = 0x3
	direntBlockDev direntFileType = 0x4
	direntFifo     direntFileType = 0x5
	direntSocket   direntFileType = 0x6
	direntSymlink  direntFileType = 0x7
)

// DirEntry is a single parsed directory entry: either a real entry
// naming an inode, or the trailing tail record a leaf directory block
// ends with. Tail entries have Inode == 0 and Name == "".
type DirEntry struct {
	Inode  uint32
	RecLen uint16
	Name   string
	IsTail bool
}

func (e DirEntry) isDot() bool    { return e.Name == "." }
func (e DirEntry) isDotDot() bool { return e.Name == ".." }

// dirEntryFromBytes decodes one directory entry record starting at
// the beginning of b. The record occupies the entry's RecLen bytes;
// the caller advances by that amount to reach the next entry.
func dirEntryFromBytes(b []byte, featureFiletype bool) (DirEntry, error) {
	if len(b) < dirEntryMinHeaderLen {
		return DirEntry{}, &shortRecordError{what: "directory entry", got: len(b), want: dirEntryMinHeaderLen}
	}

	ino := le32(b, 0x0)
	recLen := le16(b, 0x4)

	if ino == 0 && recLen == dirEntryTailRecLen {
		if len(b) < int(dirEntryTailRecLen) {
			return DirEntry{}, &shortRecordError{what: "directory entry tail", got: len(b), want: int(dirEntryTailRecLen)}
		}
		reservedZero := b[0x6]
		reservedFt := b[0x7]
		if reservedZero != 0 || reservedFt != dirEntryTailFileType {
			return DirEntry{}, fmt.Errorf("ext4: invalid directory entry tail: reserved_zero=%d reserved_ft=%#02x", reservedZero, reservedFt)
		}
		return DirEntry{Inode: 0, RecLen: recLen, IsTail: true}, nil
	}

	var nameLen int
	var nameOff int
	if featureFiletype {
		nameLen = int(b[0x6])
		nameOff = 0x8
	} else {
		nameLen = int(le16(b, 0x6))
		nameOff = 0x8
	}

	if nameOff+nameLen > len(b) {
		return DirEntry{}, fmt.Errorf("ext4: directory entry name overruns record")
	}
	name := string(b[nameOff : nameOff+nameLen])

	return DirEntry{Inode: ino, RecLen: recLen, Name: name}, nil
}
