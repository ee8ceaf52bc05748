package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"binwatch/internal/config"
	"binwatch/internal/logger"
	"binwatch/internal/model"
)

var (
	// ErrUnsupportedType is returned for files that are neither a known image nor video format.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrInvalidName is returned for stored names that would escape the upload directory.
	ErrInvalidName = errors.New("invalid upload name")
)

var mediaTypes = map[string]model.MediaType{
	"png":  model.MediaImage,
	"jpg":  model.MediaImage,
	"jpeg": model.MediaImage,
	"mp4":  model.MediaVideo,
	"avi":  model.MediaVideo,
	"mov":  model.MediaVideo,
}

// MediaTypeOf classifies a filename by extension, case-insensitively.
func MediaTypeOf(filename string) (model.MediaType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if mt, ok := mediaTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(filename))
}

// UploadService stores uploaded files under generated names.
type UploadService struct {
	dir    string
	logger *logger.Logger
}

// NewUploadService creates an upload store rooted at the configured directory.
func NewUploadService(cfg *config.Config, logger *logger.Logger) *UploadService {
	return &UploadService{
		dir:    cfg.UploadDirectory,
		logger: logger,
	}
}

// Dir returns the upload directory.
func (s *UploadService) Dir() string {
	return s.dir
}

// Save writes r to a new file named after a random UUID with the original
// extension. It returns the stored name and the media type.
func (s *UploadService) Save(original string, r io.Reader) (string, model.MediaType, error) {
	mediaType, err := MediaTypeOf(original)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(original))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload %s: %w", name, err)
	}

	s.logger.Info("Stored upload %s as %s (%d bytes)", original, name, n)
	return name, mediaType, nil
}

// Path resolves a stored name to its file path.
func (s *UploadService) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored upload. Missing files are not an error.
func (s *UploadService) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear deletes every file in the upload directory and returns how many were removed.
func (s *UploadService) Clear() (int, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read upload directory: %w", err)
	}

	removed := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, file.Name())); err != nil {
			s.logger.Error("Error deleting upload %s: %v", file.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
