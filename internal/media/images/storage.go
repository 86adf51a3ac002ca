package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages image filesystem operations.
// Thread-safe for concurrent operations.
// Used for card illustrations, wordbook avatars, and custom profile avatars.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at {basePath}/{subdir}/.
// Example: NewStorage("/data/images", "cards") -> /data/images/cards/.
func NewStorage(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores a validated upload for an entity, replacing any previous
// image regardless of its old format.
// Filename format: {id}.{format}.
func (s *Storage) Save(id string, upload *Upload) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeLocked(id); err != nil {
		return "", err
	}

	path := s.path(id, upload.Format)
	if err := os.WriteFile(path, upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return filepath.Base(path), nil
}

// Get retrieves image data and format for an entity.
func (s *Storage) Get(id string) ([]byte, string, error) {
	if id == "" {
		return nil, "", fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, format, ok := s.findLocked(id)
	if !ok {
		return nil, "", os.ErrNotExist
	}

	data, err := os.ReadFile(path) //#nosec G304 -- Path is built from the storage root
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image file: %w", err)
	}
	return data, format, nil
}

// Exists checks if an image exists for an entity.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, _, ok := s.findLocked(id)
	return ok
}

// Delete removes an entity's image. Missing files are not an error.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(id)
}

// Hash computes the SHA256 hash of an image.
// Returns a hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(id string) (string, error) {
	data, _, err := s.Get(id)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

var knownFormats = []string{"jpeg", "png", "gif", "webp"}

func (s *Storage) path(id, format string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.%s", id, format))
}

// findLocked locates the stored file for an id, whatever its format.
func (s *Storage) findLocked(id string) (path, format string, ok bool) {
	for _, f := range knownFormats {
		p := s.path(id, f)
		if _, err := os.Stat(p); err == nil {
			return p, f, true
		}
	}
	return "", "", false
}

func (s *Storage) removeLocked(id string) error {
	for _, f := range knownFormats {
		p := s.path(id, f)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete image file: %w", err)
		}
	}
	return nil
}

// ContentType maps a stored format to its MIME type.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
