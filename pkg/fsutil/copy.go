// Package fsutil provides the file tree operations used to assemble
// template workspaces: whole-tree copies, additive overlay copies, and
// literal byte replacement across a tree.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"devsmoke/pkg/logging"
)

// CopyTree duplicates the tree rooted at src into dst. An existing dst is
// removed first so the result never contains stale content. Symbolic links
// are recreated as links pointing at the same target, not dereferenced.
func CopyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to clear destination %s: %w", dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}

	return copyDir(src, dst, info)
}

// CopyContents overlays the direct children of srcDir onto dstDir, creating
// dstDir (and parents) if needed. Directories are merged recursively with
// existing destination content kept, regular files are copied over any
// existing file, and other entry types (sockets, FIFOs, devices) are skipped.
func CopyContents(srcDir, dstDir string) error {
	logger := logging.GetLogger("fsutil")

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dstDir, err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to read source %s: %w", srcDir, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(srcDir, entry.Name())
		dstPath := filepath.Join(dstDir, entry.Name())

		info, err := os.Lstat(srcPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", srcPath, err)
		}

		switch {
		case info.IsDir():
			if err := mergeDir(srcPath, dstPath, info); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath, info); err != nil {
				return err
			}
		case info.Mode()&os.ModeSymlink != 0:
			if err := copyLink(srcPath, dstPath); err != nil {
				return err
			}
		default:
			logger.Debug().Str("path", srcPath).Msg("skipping special file")
		}
	}

	return nil
}

// copyDir copies src into a dst that does not exist yet.
func copyDir(src, dst string, info os.FileInfo) error {
	if err := os.Mkdir(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		childInfo, err := os.Lstat(srcPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", srcPath, err)
		}

		switch {
		case childInfo.IsDir():
			if err := copyDir(srcPath, dstPath, childInfo); err != nil {
				return err
			}
		case childInfo.Mode()&os.ModeSymlink != 0:
			if err := copyLink(srcPath, dstPath); err != nil {
				return err
			}
		case childInfo.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath, childInfo); err != nil {
				return err
			}
		}
	}

	return nil
}

// mergeDir copies src into dst, reusing dst if it already exists.
func mergeDir(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}
	return CopyContents(src, dst)
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dst, err)
	}

	return nil
}

func copyLink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("failed to create link %s: %w", dst, err)
	}
	return nil
}
