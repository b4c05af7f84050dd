package util

import (
	"errors"
	"io/fs"
	"os"
)

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else {
		return err
	}
}

// Exists reports whether path exists. Stat errors other than "not exist"
// count as existing so callers never pick a name they cannot verify.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// FileSize returns the size of path, or 0 if it cannot be read.
func FileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
