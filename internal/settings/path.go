package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	gap "github.com/muesli/go-app-paths"
	"github.com/mitchellh/go-homedir"
)

// DefaultFileName is the configuration file looked up when no explicit
// path is given.
const DefaultFileName = "config.json"

// AppName scopes the per-user configuration directories.
const AppName = "narrator"

// Resolve picks the configuration file to load. An explicit path wins
// (with ~ expanded). Otherwise the working directory is tried first, then
// the per-user and system config directories. When nothing exists the
// working-directory name is returned and Load falls back to defaults.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return homedir.Expand(explicit)
	}

	if exists(DefaultFileName) {
		return DefaultFileName, nil
	}

	dirs, err := gap.NewScope(gap.User, AppName).ConfigDirs()
	if err != nil {
		return DefaultFileName, nil
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, DefaultFileName)
		if exists(candidate) {
			return candidate, nil
		}
	}
	return DefaultFileName, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
