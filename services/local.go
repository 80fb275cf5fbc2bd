package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	BasePath string
}

// Move relocates artifact from under tmpRoot to the same relative path
// under BasePath, creating missing directories.
func (l *LocalStorage) Move(artifact, tmpRoot string) (string, error) {
	rel, err := filepath.Rel(tmpRoot, artifact)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideTempDir, artifact)
	}
	dest := filepath.Join(l.BasePath, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.Rename(artifact, dest); err != nil {
		// rename fails across filesystems
		if cpErr := copyFile(artifact, dest); cpErr != nil {
			return "", fmt.Errorf("failed to move %s: %v; copy fallback: %w", artifact, err, cpErr)
		}
		if err := os.Remove(artifact); err != nil {
			return "", fmt.Errorf("failed to remove %s after copy: %w", artifact, err)
		}
	}

	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
