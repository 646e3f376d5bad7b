// Package filesys provides a collection of utility functions for common
// filesystem operations, expressed over afero so that containers can run
// against the operating system filesystem in production and an in-memory
// filesystem in tests.
package filesys

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given
// permissions, including any missing parents. It returns an error if the
// existing path is a file rather than a directory.
func CreateDir(fs afero.Fs, dirPath string, permission os.FileMode) error {
	stat, err := fs.Stat(dirPath)
	if err == nil && !stat.IsDir() {
		return ErrIsNotDir
	}
	return fs.MkdirAll(dirPath, permission)
}

// Exists checks if a file or directory at the given path exists.
func Exists(fs afero.Fs, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadFile reads the entire content of the file at path into a byte slice.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

// WriteFile writes contents to the file at path with the given permission,
// creating it if absent and truncating it otherwise. Segment blobs are always
// rewritten whole; there is no append path.
func WriteFile(fs afero.Fs, path string, permission os.FileMode, contents []byte) error {
	return afero.WriteFile(fs, path, contents, permission)
}

// DeleteFile deletes the file at the specified path.
func DeleteFile(fs afero.Fs, path string) error {
	return fs.Remove(path)
}
