package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/media/images"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// ProfileService manages per-user presentation preferences and the
// aggregated my-page view.
type ProfileService struct {
	store   *store.Store
	avatars *images.Storage
	logger  *slog.Logger
}

// NewProfileService creates a new profile service. avatars may be nil in
// tests; custom avatar uploads then fail cleanly.
func NewProfileService(store *store.Store, avatars *images.Storage, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:   store,
		avatars: avatars,
		logger:  logger,
	}
}

// GetProfile returns the viewer's profile, creating the default lazily
// on first access.
func (s *ProfileService) GetProfile(ctx context.Context, viewer domain.Viewer) (*domain.UserProfile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	return s.profileFor(ctx, viewer.ID, true)
}

// GetProfileByUser returns another user's profile for display. Missing
// profiles read as the defaults without being persisted.
func (s *ProfileService) GetProfileByUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profileFor(ctx, userID, false)
}

// SetPresetAvatar selects one of the built-in avatars, clearing any
// custom upload selection.
func (s *ProfileService) SetPresetAvatar(ctx context.Context, viewer domain.Viewer, name string) (*domain.UserProfile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if !domain.ValidPresetAvatar(name) {
		return nil, apperrors.BadRequestf("unknown preset avatar %q", name)
	}

	profile, err := s.profileFor(ctx, viewer.ID, true)
	if err != nil {
		return nil, err
	}
	profile.Avatar.SetPreset(name)
	profile.Touch()

	if err := s.store.Profiles.Update(ctx, profile.UserID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("avatar preset selected", "user_id", viewer.ID, "preset", name)
	return profile, nil
}

// UploadAvatar validates and stores a custom avatar image, switching the
// profile to it.
func (s *ProfileService) UploadAvatar(ctx context.Context, viewer domain.Viewer, data []byte) (*domain.UserProfile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if s.avatars == nil {
		return nil, apperrors.Internal("avatar storage is not configured")
	}

	upload, err := images.ValidateUpload(data)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileFor(ctx, viewer.ID, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.avatars.Save(viewer.ID, upload); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	profile.Avatar.SetCustom(fmt.Sprintf("/api/users/%s/avatar", viewer.ID))
	profile.Touch()

	if err := s.store.Profiles.Update(ctx, profile.UserID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("avatar uploaded",
		"user_id", viewer.ID,
		"format", upload.Format,
		"size", len(data),
	)
	return profile, nil
}

// Avatar serves a user's custom avatar image bytes with their content
// type.
func (s *ProfileService) Avatar(ctx context.Context, userID string) ([]byte, string, error) {
	if s.avatars == nil {
		return nil, "", apperrors.NotFound("avatar not found")
	}
	profile, err := s.profileFor(ctx, userID, false)
	if err != nil {
		return nil, "", err
	}
	if profile.Avatar.Kind != domain.AvatarCustom {
		return nil, "", apperrors.NotFound("avatar not found")
	}
	data, format, err := s.avatars.Get(userID)
	if err != nil {
		return nil, "", apperrors.NotFound("avatar not found")
	}
	return data, images.ContentType(format), nil
}

// SetBackgroundColor selects a profile background from the fixed palette.
func (s *ProfileService) SetBackgroundColor(ctx context.Context, viewer domain.Viewer, hex string) (*domain.UserProfile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if !domain.ValidBackgroundColor(hex) {
		return nil, apperrors.BadRequestf("unsupported background color %q", hex)
	}

	profile, err := s.profileFor(ctx, viewer.ID, true)
	if err != nil {
		return nil, err
	}
	profile.BackgroundColor = hex
	profile.Touch()

	if err := s.store.Profiles.Update(ctx, profile.UserID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("background color set", "user_id", viewer.ID, "color", hex)
	return profile, nil
}

// MyPage is the aggregated view of the viewer's own content and
// collected items.
type MyPage struct {
	User          *domain.User        `json:"user"`
	Profile       *domain.UserProfile `json:"profile"`
	WordBooks     []*domain.WordBook  `json:"wordbooks"`
	Bookmarked    []*domain.WordBook  `json:"bookmarked"`
	StarredCards  []*domain.WordCard  `json:"starred_cards"`
	LikesReceived int                 `json:"likes_received"`
}

// MyPage assembles the viewer's dashboard: profile, own wordbooks,
// bookmarks, starred cards, and the total likes their books collected.
func (s *ProfileService) MyPage(ctx context.Context, viewer domain.Viewer) (*MyPage, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, viewer.ID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	profile, err := s.profileFor(ctx, viewer.ID, true)
	if err != nil {
		return nil, err
	}

	books, err := s.store.ListWordBooksByOwner(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list wordbooks: %w", err)
	}
	likes := 0
	for _, wb := range books {
		n, err := s.store.CountMarksForTarget(ctx, domain.MarkLike, wb.ID)
		if err != nil {
			return nil, fmt.Errorf("count likes: %w", err)
		}
		likes += n
	}

	bookmarkIDs, err := s.store.ListMarkedTargetIDs(ctx, domain.MarkBookmark, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	bookmarked, err := loadViewableWordBooks(ctx, s.store, viewer, bookmarkIDs)
	if err != nil {
		return nil, err
	}
	store.SortWordBooksNewestFirst(bookmarked)

	starredIDs, err := s.store.ListMarkedTargetIDs(ctx, domain.MarkCardStar, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list stars: %w", err)
	}
	starred := make([]*domain.WordCard, 0, len(starredIDs))
	for _, cardID := range starredIDs {
		card, err := s.store.GetCard(ctx, cardID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if wb, err := s.store.GetWordBook(ctx, card.WordBookID); err != nil || !domain.CanView(wb, viewer) {
			continue
		}
		starred = append(starred, card)
	}

	return &MyPage{
		User:          user,
		Profile:       profile,
		WordBooks:     books,
		Bookmarked:    bookmarked,
		StarredCards:  starred,
		LikesReceived: likes,
	}, nil
}

// profileFor loads a profile, optionally persisting the default when
// none exists yet.
func (s *ProfileService) profileFor(ctx context.Context, userID string, createMissing bool) (*domain.UserProfile, error) {
	profile, err := s.store.Profiles.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = domain.NewUserProfile(userID)
	if !createMissing {
		return profile, nil
	}
	if err := s.store.Profiles.Create(ctx, userID, profile); err != nil {
		// A concurrent first access may have created it already.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.Profiles.Get(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}
