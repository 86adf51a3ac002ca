package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordbookapp/wordbook-server/internal/backup"
	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// AdminService exposes the aggregate dashboard and moderation actions.
// Every operation requires the admin role.
type AdminService struct {
	store   *store.Store
	backups *backup.Service
	logger  *slog.Logger
}

// NewAdminService creates a new admin service. backups may be nil when no
// backup directory is configured.
func NewAdminService(store *store.Store, backups *backup.Service, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		backups: backups,
		logger:  logger,
	}
}

// AdminStats is the platform-wide counts dashboard.
type AdminStats struct {
	Users     int `json:"users"`
	WordBooks int `json:"wordbooks"`

	// Breakdown of WordBooks. Public and AI-generated can overlap, so the
	// three do not sum to the total.
	PublicWordBooks  int `json:"public_wordbooks"`
	PrivateWordBooks int `json:"private_wordbooks"`
	AIWordBooks      int `json:"ai_wordbooks"`

	Cards       int               `json:"cards"`
	Tags        int               `json:"tags"`
	Likes       int               `json:"likes"`
	Bookmarks   int               `json:"bookmarks"`
	CardStars   int               `json:"card_stars"`
	PopularTags []domain.TagUsage `json:"popular_tags"`
}

// Stats aggregates platform-wide counts.
func (s *AdminService) Stats(ctx context.Context, viewer domain.Viewer) (*AdminStats, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}

	stats := &AdminStats{}
	var err error
	if stats.Users, err = s.store.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.WordBooks, err = s.store.CountWordBooks(ctx); err != nil {
		return nil, fmt.Errorf("count wordbooks: %w", err)
	}
	if _, stats.PublicWordBooks, err = s.store.ListWordBooks(ctx, func(wb *domain.WordBook) bool {
		return wb.IsPublic
	}, 1, 0); err != nil {
		return nil, fmt.Errorf("count public wordbooks: %w", err)
	}
	if _, stats.AIWordBooks, err = s.store.ListWordBooks(ctx, func(wb *domain.WordBook) bool {
		return wb.IsAIGenerated
	}, 1, 0); err != nil {
		return nil, fmt.Errorf("count ai wordbooks: %w", err)
	}
	if _, stats.PrivateWordBooks, err = s.store.ListWordBooks(ctx, func(wb *domain.WordBook) bool {
		return !wb.IsPublic && !wb.IsAIGenerated
	}, 1, 0); err != nil {
		return nil, fmt.Errorf("count private wordbooks: %w", err)
	}
	if stats.Cards, err = s.store.CountCards(ctx); err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	if stats.Tags, err = s.store.CountTags(ctx); err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	if stats.Likes, err = s.store.CountMarksByKind(ctx, domain.MarkLike); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if stats.Bookmarks, err = s.store.CountMarksByKind(ctx, domain.MarkBookmark); err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}
	if stats.CardStars, err = s.store.CountMarksByKind(ctx, domain.MarkCardStar); err != nil {
		return nil, fmt.Errorf("count stars: %w", err)
	}
	if stats.PopularTags, err = s.store.PopularTags(ctx, 10); err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	return stats, nil
}

// DeleteUser removes a user account and everything it owns: wordbooks
// with their cards and marks, outgoing marks, and the profile.
func (s *AdminService) DeleteUser(ctx context.Context, viewer domain.Viewer, userID string) error {
	if err := requireAdmin(viewer); err != nil {
		return err
	}
	if userID == viewer.ID {
		return apperrors.BadRequest("admins cannot delete their own account")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return notFound(err, "user not found")
	}

	if err := s.store.DeleteUserCascade(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", userID, "deleted_by", viewer.ID)
	return nil
}

// CreateBackup exports all server data into a new archive.
func (s *AdminService) CreateBackup(ctx context.Context, viewer domain.Viewer) (*backup.Result, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	if s.backups == nil {
		return nil, apperrors.Internal("backups are not configured")
	}
	return s.backups.Create(ctx)
}

// ListBackups returns all backup archives on disk, newest first.
func (s *AdminService) ListBackups(ctx context.Context, viewer domain.Viewer) ([]backup.Info, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	if s.backups == nil {
		return nil, apperrors.Internal("backups are not configured")
	}
	return s.backups.List(ctx)
}

// DeleteBackup removes a backup archive.
func (s *AdminService) DeleteBackup(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireAdmin(viewer); err != nil {
		return err
	}
	if s.backups == nil {
		return apperrors.Internal("backups are not configured")
	}
	return s.backups.Delete(ctx, id)
}

func requireAdmin(viewer domain.Viewer) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	if !viewer.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}
