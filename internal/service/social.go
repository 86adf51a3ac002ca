package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// SocialService manages the like, bookmark, and card-star toggles.
// Every toggle is gated by the target's visibility: a target the viewer
// cannot see behaves as if it does not exist.
type SocialService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:  store,
		logger: logger,
	}
}

// ToggleState is the outcome of a toggle: the new state and the target's
// resulting total.
type ToggleState struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// ToggleLike flips the viewer's like on a wordbook.
func (s *SocialService) ToggleLike(ctx context.Context, viewer domain.Viewer, wordBookID string) (*ToggleState, error) {
	return s.toggleWordBookMark(ctx, viewer, domain.MarkLike, wordBookID)
}

// ToggleBookmark flips the viewer's bookmark on a wordbook.
func (s *SocialService) ToggleBookmark(ctx context.Context, viewer domain.Viewer, wordBookID string) (*ToggleState, error) {
	return s.toggleWordBookMark(ctx, viewer, domain.MarkBookmark, wordBookID)
}

// ToggleCardStar flips the viewer's star on a card. The gate is the
// visibility of the card's wordbook.
func (s *SocialService) ToggleCardStar(ctx context.Context, viewer domain.Viewer, cardID string) (*ToggleState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, notFound(err, "card not found")
	}
	if _, err := viewableWordBook(ctx, s.store, viewer, card.WordBookID); err != nil {
		return nil, apperrors.NotFound("card not found")
	}

	return s.toggle(ctx, domain.MarkCardStar, viewer.ID, card.ID)
}

// ListBookmarkedWordBooks returns the viewer's bookmarked wordbooks,
// newest first. Books that vanished or went private are dropped.
func (s *SocialService) ListBookmarkedWordBooks(ctx context.Context, viewer domain.Viewer) ([]*domain.WordBook, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	ids, err := s.store.ListMarkedTargetIDs(ctx, domain.MarkBookmark, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	books, err := loadViewableWordBooks(ctx, s.store, viewer, ids)
	if err != nil {
		return nil, err
	}
	store.SortWordBooksNewestFirst(books)
	return books, nil
}

// ListStarredCards returns the viewer's starred cards. Cards whose
// wordbook vanished or went out of scope are dropped.
func (s *SocialService) ListStarredCards(ctx context.Context, viewer domain.Viewer) ([]*domain.WordCard, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	ids, err := s.store.ListMarkedTargetIDs(ctx, domain.MarkCardStar, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list stars: %w", err)
	}

	cards := make([]*domain.WordCard, 0, len(ids))
	for _, cardID := range ids {
		card, err := s.store.GetCard(ctx, cardID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if _, err := viewableWordBook(ctx, s.store, viewer, card.WordBookID); err != nil {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// StarredCardIDs returns the set of the viewer's starred cards within one
// wordbook, for decorating card listings.
func (s *SocialService) StarredCardIDs(ctx context.Context, viewer domain.Viewer, wordBookID string) (map[string]bool, error) {
	if !viewer.Authenticated {
		return map[string]bool{}, nil
	}
	cards, err := s.store.ListCardsByWordBook(ctx, wordBookID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	starred := make(map[string]bool)
	for _, card := range cards {
		has, err := s.store.HasMark(ctx, domain.MarkCardStar, viewer.ID, card.ID)
		if err != nil {
			return nil, fmt.Errorf("check star: %w", err)
		}
		if has {
			starred[card.ID] = true
		}
	}
	return starred, nil
}

func (s *SocialService) toggleWordBookMark(ctx context.Context, viewer domain.Viewer, kind domain.MarkKind, wordBookID string) (*ToggleState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if _, err := viewableWordBook(ctx, s.store, viewer, wordBookID); err != nil {
		return nil, err
	}
	return s.toggle(ctx, kind, viewer.ID, wordBookID)
}

func (s *SocialService) toggle(ctx context.Context, kind domain.MarkKind, userID, targetID string) (*ToggleState, error) {
	active, err := s.store.ToggleMark(ctx, kind, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("toggle %s: %w", kind, err)
	}
	count, err := s.store.CountMarksForTarget(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("count %s marks: %w", kind, err)
	}

	s.logger.Info("mark toggled",
		"kind", string(kind),
		"user_id", userID,
		"target_id", targetID,
		"active", active,
	)
	return &ToggleState{Active: active, Count: count}, nil
}
