package ext4

import (
	"io"
	"strings"
)

// splitAbsolutePath splits an absolute slash-separated path into its
// non-empty, non-"." components, handling ".." the way resolveInodeByPath
// expects: as a request to pop one level, checked by the caller
// against how many levels are currently pushed.
func splitAbsolutePath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, &RequireAbsolutePathError{Path: path}
	}

	var out []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
			continue
		default:
			out = append(out, part)
		}
	}
	return out, nil
}

// resolveInodeByPath walks an absolute path component by component
// starting from the root inode, returning the inode the path resolves
// to. Each Normal component must name an entry of the directory
// resolved so far; ".." pops the stack and it is an error to pop past
// the root.
func (fs *FileSystem) resolveInodeByPath(path string) (*inode, error) {
	components, err := splitAbsolutePath(path)
	if err != nil {
		return nil, err
	}

	root, err := fs.getInode(uint64(rootInodeNumber))
	if err != nil {
		return nil, err
	}
	stack := []*inode{root}

	for _, name := range components {
		if name == ".." {
			if len(stack) <= 1 {
				return nil, &UnexpectedParentDirError{Path: path}
			}
			stack = stack[:len(stack)-1]
			continue
		}

		current := stack[len(stack)-1]
		if !current.isDir() {
			return nil, &IsNotDirectoryError{Path: path}
		}

		ino, err := fs.findInDir(current, name)
		if err != nil {
			return nil, err
		}
		if ino == 0 {
			return nil, &NoSuchFileOrDirectoryError{Path: path}
		}

		next, err := fs.getInode(uint64(ino))
		if err != nil {
			return nil, err
		}
		stack = append(stack, next)
	}

	return stack[len(stack)-1], nil
}

// findInDir scans a directory's entries for one named name, returning
// its inode number, or 0 if there is no such entry.
func (fs *FileSystem) findInDir(dir *inode, name string) (uint32, error) {
	extents, err := fs.extentsOf(dir)
	if err != nil {
		return 0, err
	}

	rd := newReadDir(fs.backend, fs.superblock.BlockSize(), fs.superblock.FeatureFiletype(), extents)
	for {
		entry, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		if entry.Name == name {
			return entry.Inode, nil
		}
	}
	return 0, nil
}
