package platform

import (
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// ArchiveMode converts the mode bits of an archive entry into the permissions
// used for the extracted file. The owner can always read and write the result
// so that later runs may replace it.
func ArchiveMode(mode int64) os.FileMode {
	return os.FileMode(mode).Perm() | 0600
}

