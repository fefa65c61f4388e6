package interp

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ardnew/mung"
)

// Platform identifies the host operating system and architecture using Go
// naming conventions.
type Platform struct {
	OS   string
	Arch string
}

// NewBuiltinEnv returns a root scope holding the built-in functions and
// values. Callers shadow any of them by binding the same name in an inner
// scope. processEnv is a list of "KEY=VALUE" entries backing the env()
// function; if it is nil, os.Environ is used.
func NewBuiltinEnv(processEnv []string) *Env {
	vars := processEnvMap(processEnv)

	return NewEnv(nil).
		Set("env", func(key string) string { return vars[key] }).
		Set("cwd", getCwd).
		Set("hostname", getHostname()).
		Set("user", getUsername()).
		Set("platform", getPlatform()).
		Set("path", map[string]any{
			"abs": pathAbs,
			"cat": pathCat,
			"rel": pathRel,
		}).
		Set("file", map[string]any{
			"exists":    fileExists,
			"isDir":     fileIsDir,
			"isRegular": fileIsRegular,
			"isSymlink": fileIsSymlink,
		}).
		Set("mung", map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		})
}

// processEnvMap converts "KEY=VALUE" entries to a map.
func processEnvMap(list []string) map[string]string {
	if list == nil {
		list = os.Environ()
	}

	m := make(map[string]string, len(list))

	for _, entry := range list {
		if key, value, ok := strings.Cut(entry, "="); ok {
			m[key] = value
		}
	}

	return m
}

func getPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

// mungPrefix prepends items to the PATH-like list key, removing duplicates.
func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// mungPrefixIf is mungPrefix keeping only items that satisfy predicate.
func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
