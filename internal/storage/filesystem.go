package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is a Storage rooted at a single directory. Paths that would
// escape the root are rejected.
type FileSystem struct {
	baseDir string
}

func NewFileSystem(baseDir string) *FileSystem {
	return &FileSystem{
		baseDir: filepath.Clean(baseDir),
	}
}

func (fsys *FileSystem) BaseDir() string { return fsys.baseDir }

// sanitizePath validates and cleans the path to prevent directory traversal
func (fsys *FileSystem) sanitizePath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: contains parent directory reference")
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid path: absolute paths not allowed")
	}

	fullPath := filepath.Join(fsys.baseDir, cleaned)

	// Verify the final path is still within baseDir
	if !strings.HasPrefix(fullPath, fsys.baseDir+string(filepath.Separator)) && fullPath != fsys.baseDir {
		return "", fmt.Errorf("invalid path: outside base directory")
	}

	return fullPath, nil
}

// Save writes data through a temporary file and rename so readers never see
// a half-written document.
func (fsys *FileSystem) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := fsys.sanitizePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("replacing file: %w", err)
	}

	return nil
}

func (fsys *FileSystem) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := fsys.sanitizePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	data, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return data, nil
}

// List returns the relative paths matching a glob pattern under the root.
func (fsys *FileSystem) List(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Clean the pattern but allow * and ? wildcards
	cleaned := filepath.Clean(pattern)
	if strings.Contains(cleaned, "..") {
		return nil, fmt.Errorf("invalid pattern: contains parent directory reference")
	}
	if filepath.IsAbs(cleaned) {
		return nil, fmt.Errorf("invalid pattern: absolute paths not allowed")
	}

	matches, err := filepath.Glob(filepath.Join(fsys.baseDir, cleaned))
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var results []string
	for _, match := range matches {
		if !strings.HasPrefix(match, fsys.baseDir+string(filepath.Separator)) {
			continue
		}
		rel, err := filepath.Rel(fsys.baseDir, match)
		if err != nil {
			continue
		}
		results = append(results, filepath.ToSlash(rel))
	}

	return results, nil
}

func (fsys *FileSystem) Exists(ctx context.Context, path string) bool {
	fullPath, err := fsys.sanitizePath(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(fullPath)
	return err == nil
}

func (fsys *FileSystem) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := fsys.sanitizePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	err = os.Remove(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}

	return nil
}
