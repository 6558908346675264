package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dapp-labs/dapp-cli/internal/platform"
)

// excludedNames are never copied out of a template tree.
var excludedNames = map[string]bool{
	".DS_Store": true,
}

// CopyTree recursively copies src into dst, creating both if missing.
// Existing files in dst are overwritten. Symlinks and special files are
// skipped. It returns the copied files relative to dst, never nil.
func CopyTree(src, dst string) ([]string, error) {
	if err := os.MkdirAll(src, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", src, err)
	}
	files := []string{}
	if err := copyDir(src, dst, "", &files); err != nil {
		return nil, err
	}
	return files, nil
}

func copyDir(src, dst, rel string, files *[]string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		relPath := filepath.Join(rel, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath, relPath, files); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return fmt.Errorf("copying %s: %w", relPath, err)
			}
			*files = append(*files, relPath)
		}
	}
	return nil
}

// copyFile copies a single file, keeping its permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile leaves the mode of an existing file alone.
	return platform.Chmod(dst, info.Mode().Perm())
}
