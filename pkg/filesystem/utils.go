// Package filesystem locates and opens the files newsfeed writes next to itself.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDirNotFound is returned when a parent directory cannot be created.
var ErrDirNotFound = errors.New("directory not found")

// GetDefaultPath returns a default file path in the executable directory
func GetDefaultPath(filename string) (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	return filepath.Join(filepath.Dir(exePath), filename), nil
}

// EnsureDirectoryExists creates the directory for the given file path if it doesn't exist
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}

// OpenLogFile opens path for appending, creating it and its directory as needed.
// An empty path means newsfeed.log next to the executable.
func OpenLogFile(path string) (*os.File, error) {
	if path == "" {
		p, err := GetDefaultPath("newsfeed.log")
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := EnsureDirectoryExists(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
