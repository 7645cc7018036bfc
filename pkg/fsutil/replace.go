package fsutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"devsmoke/pkg/logging"
)

// ReplaceInFiles performs a literal byte replacement of search with
// replacement in every regular file under root. Files that do not contain
// the search term are left completely untouched, preserving their
// modification times. The comparison is on raw bytes, so files holding
// invalid UTF-8 are still scanned safely. The first read or write failure
// aborts the walk; files already rewritten stay rewritten.
func ReplaceInFiles(root, search, replacement string) error {
	if search == "" {
		return fmt.Errorf("search term must not be empty")
	}

	logger := logging.GetLogger("fsutil")
	searchB := []byte(search)
	replacementB := []byte(replacement)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !bytes.Contains(content, searchB) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		updated := bytes.ReplaceAll(content, searchB, replacementB)
		if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		logger.Debug().Str("file", rel).Msg("replaced placeholder")
		return nil
	})
}
