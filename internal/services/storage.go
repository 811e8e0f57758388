package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageService hands out scratch directories for documents that must
// exist on disk while they are being read.
type StorageService interface {
	EnsureBaseDir() error
	SaveTemp(filename string, content []byte) (*TempFile, error)
}

// TempFile is a file inside its own scratch directory. Cleanup removes both.
type TempFile struct {
	Dir  string
	Path string
}

func (t *TempFile) Cleanup() error {
	if t == nil || t.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(t.Dir); err != nil {
		return fmt.Errorf("failed to remove temp dir: %w", err)
	}
	return nil
}

type storageService struct {
	baseDir string
}

func NewStorageService(baseDir string) StorageService {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &storageService{
		baseDir: baseDir,
	}
}

func (s *storageService) EnsureBaseDir() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp base directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveTemp(filename string, content []byte) (*TempFile, error) {
	dir, err := os.MkdirTemp(s.baseDir, "cvmatch-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	tmp := &TempFile{
		Dir:  dir,
		Path: filepath.Join(dir, safeFilename(filename)),
	}

	if err := os.WriteFile(tmp.Path, content, 0600); err != nil {
		_ = tmp.Cleanup()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return tmp, nil
}

// safeFilename keeps only the base name so uploads cannot escape the scratch dir.
func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "document.pdf"
	}
	return name
}
