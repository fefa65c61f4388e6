package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name of the running executable with its extension
// removed. It names the configuration and cache directories.
//
// The default output of the dlv debugger ("__debug_bin123") is replaced
// with [Name], and leading dots are removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return normalizePrefix(id)
	},
)

var (
	debugBinPattern = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDots     = regexp.MustCompile(`^\.+`)
)

func normalizePrefix(path string) string {
	id := leadingDots.ReplaceAllString(filepath.Base(path), "")
	id = strings.TrimSuffix(id, filepath.Ext(id))
	id = debugBinPattern.ReplaceAllString(id, Name)

	if id == "" {
		return Name
	}

	return id
}

// ConfigDir returns the directory holding the configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the directory used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir joins [Prefix] to the platform directory returned by base, or to
// hidden under the home directory when the platform has none, or to the
// working directory as a last resort.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
