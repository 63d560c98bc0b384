package xfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading tilde (~) with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			if path == "~" {
				return home
			}
			return filepath.Join(home, path[2:])
		}
	}

	return path
}

// Exists reports whether a file or directory exists at path.
// Any error other than "not exist" is treated as existing, so callers never
// overwrite something they cannot stat.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// EnsureDir creates the directory at path if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
