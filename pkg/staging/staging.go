// Package staging writes incoming file content to a scratch directory
// before ingestion. Every staged file gets a unique on-disk name so
// concurrent uploads of the same filename never collide, and Release
// removes the scratch copy regardless of how ingestion ended.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/internal/logger"
)

// StagedFile is a file written to the staging area.
type StagedFile struct {
	// Path is the absolute on-disk location of the staged content.
	Path string

	// Filename is the logical name the file should keep after
	// ingestion. It is independent of the unique on-disk name.
	Filename string

	// Size is the staged content length in bytes.
	Size int64
}

// Stager manages a staging directory.
type Stager struct {
	dir string
}

// NewStager creates a stager rooted at dir, creating it if needed.
func NewStager(dir string) (*Stager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "quarry-staging")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
	}
	return &Stager{dir: dir}, nil
}

// Dir returns the staging root.
func (s *Stager) Dir() string {
	return s.dir
}

// StageBytes writes content to a uniquely named scratch file.
func (s *Stager) StageBytes(content []byte, filename string) (*StagedFile, error) {
	path := s.scratchPath(filename)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", filename, err)
	}

	return &StagedFile{
		Path:     path,
		Filename: filename,
		Size:     int64(len(content)),
	}, nil
}

// StageReader streams content from r to a uniquely named scratch file.
func (s *Stager) StageReader(r io.Reader, filename string) (*StagedFile, error) {
	path := s.scratchPath(filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", filename, err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to stage %s: %w", filename, err)
	}

	return &StagedFile{
		Path:     path,
		Filename: filename,
		Size:     size,
	}, nil
}

// Release removes the staged copy. Safe to call after a successful
// ingestion or a failed one; a missing file is not an error.
func (s *Stager) Release(file *StagedFile) {
	if file == nil || file.Path == "" {
		return
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove staged file", "path", file.Path, "error", err)
	}
}

// EnsureDir creates a named subdirectory of the staging root, used as
// the side-channel temp directory paired with scratch upload folders.
func (s *Stager) EnsureDir(name string) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging subdirectory %s: %w", name, err)
	}
	return path, nil
}

// scratchPath builds a unique on-disk name that keeps the original
// extension for easier debugging of leftover files.
func (s *Stager) scratchPath(filename string) string {
	return filepath.Join(s.dir, uuid.NewString()+filepath.Ext(filename))
}
