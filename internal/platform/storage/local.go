// Package storage persists uploaded files on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Errors returned by Save.
var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedExtensions lists the avatar file types we accept.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStore saves files under a base directory, naming them with
// fresh UUIDs so uploads can never collide or traverse paths.
type LocalStore struct {
	baseDir  string
	maxBytes int64
	logger   *slog.Logger
}

// NewLocalStore creates the base directory if needed and returns a
// store writing into it.
func NewLocalStore(baseDir string, maxBytes int64, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		baseDir:  baseDir,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "local_store")),
	}, nil
}

// Save writes the reader's content to a new file and returns its path
// relative to the base directory. The original filename contributes
// only its extension, which must be on the allow list.
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.baseDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("failed to close file", slog.String("error", err.Error()))
		}
	}()

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", ErrFileTooLarge
	}

	s.logger.Debug("file saved",
		slog.String("name", name),
		slog.Int64("bytes", written))
	return name, nil
}

// Delete removes a previously saved file, reporting whether a file was
// actually deleted. A missing file is not an error; the caller only
// wanted it gone.
func (s *LocalStore) Delete(name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	// Uploads are flat; reject anything that resolves outside baseDir.
	if filepath.Base(name) != name {
		return false, fmt.Errorf("invalid file name: %s", name)
	}

	err := os.Remove(filepath.Join(s.baseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// Path returns the absolute path of a stored file for serving.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}
