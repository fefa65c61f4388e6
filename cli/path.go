package cli

import (
	"os"
	"path/filepath"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode of created directories.
const defaultDirMode os.FileMode = 0o700

// paths locates the runtime directories of one invocation.
type paths struct {
	config string
	cache  string
}

// file returns the path of the configuration file with the given
// extension.
func (p paths) file(ext string) string {
	return filepath.Join(p.config, baseConfig+ext)
}

// mkdirAll creates the runtime directories.
func (p paths) mkdirAll() error {
	for _, dir := range []string{p.config, p.cache} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
