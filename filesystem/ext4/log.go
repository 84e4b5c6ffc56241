package ext4

import "github.com/sirupsen/logrus"

// Option configures a FileSystem at Mount time.
type Option func(*FileSystem)

// WithLogger overrides the logger used for the package's internal
// Debug-level tracing (superblock summary, inode fetches, extent tree
// traversal). The default is logrus's standard logger, so traces are
// silent unless the caller has raised logrus's level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(fs *FileSystem) {
		fs.log = l
	}
}

func defaultLogger() logrus.FieldLogger {
	return logrus.StandardLogger()
}
