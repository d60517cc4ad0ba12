package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/RyanBlaney/sonido-enhance/logging"
)

// PrepareEmptyDirs recreates every directory in dirs, in order: an
// existing directory is removed with all of its content, then the
// directory and any missing parents are created. The removal is
// irreversible. dirs is returned unchanged on success.
func PrepareEmptyDirs(dirs []string) ([]string, error) {
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			logging.Debug("Removing existing directory", logging.Fields{
				"component": "dataset",
				"dir":       dir,
			})
			if err := os.RemoveAll(dir); err != nil {
				return nil, fmt.Errorf("remove %s: %w", dir, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}

		if _, err := os.Stat(dir); err == nil {
			return nil, fmt.Errorf("create %s: %w", dir, fs.ErrExist)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return dirs, nil
}
