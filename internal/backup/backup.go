// Package backup creates and manages portable archives of all server data.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

const archiveSuffix = ".wordbook.zip"

// ErrBackupNotFound is returned when a backup ID does not exist on disk.
var ErrBackupNotFound = errors.NotFound("backup not found")

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version       string       `json:"version"`
	CreatedAt     time.Time    `json:"created_at"`
	ServerVersion string       `json:"server_version"`
	Counts        EntityCounts `json:"counts"`
}

// EntityCounts tracks entity counts for validation and progress reporting.
type EntityCounts struct {
	Users     int `json:"users"`
	Profiles  int `json:"profiles"`
	WordBooks int `json:"wordbooks"`
	Cards     int `json:"cards"`
	Tags      int `json:"tags"`
	Marks     int `json:"marks"`
}

// Info describes a backup archive on disk.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Result reports what a completed backup contains.
type Result struct {
	Info
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"-"`
}

// Service creates, lists, and deletes backup archives.
type Service struct {
	store     *store.Store
	backupDir string
	version   string
	logger    *slog.Logger
}

// NewService creates a backup Service writing archives under backupDir.
func NewService(s *store.Store, backupDir, version string, log *slog.Logger) *Service {
	return &Service{
		store:     s,
		backupDir: backupDir,
		version:   version,
		logger:    log,
	}
}

// Create exports all server data into a new archive and returns its summary.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	start := time.Now()
	id := "backup-" + start.Format("2006-01-02-150405")
	outputPath := filepath.Join(s.backupDir, id+archiveSuffix)

	s.logger.Info("creating backup", "output", outputPath)

	counts, err := exportArchive(ctx, s.store, outputPath, s.version)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	result := &Result{
		Info: Info{
			ID:        id,
			Path:      outputPath,
			Size:      info.Size(),
			CreatedAt: start,
		},
		Counts:   *counts,
		Duration: time.Since(start),
	}

	s.logger.Info("backup complete",
		"id", id,
		"size", result.Size,
		"duration", result.Duration,
		"users", counts.Users,
		"wordbooks", counts.WordBooks,
		"cards", counts.Cards)

	return result, nil
}

// List returns all available backups, newest first.
func (s *Service) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), archiveSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(_ context.Context, id string) (*Info, error) {
	path := filepath.Join(s.backupDir, id+archiveSuffix)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup archive.
func (s *Service) Delete(_ context.Context, id string) error {
	path := filepath.Join(s.backupDir, id+archiveSuffix)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}
