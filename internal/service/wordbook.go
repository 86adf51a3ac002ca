package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/id"
	"github.com/wordbookapp/wordbook-server/internal/media/images"
	"github.com/wordbookapp/wordbook-server/internal/search"
	"github.com/wordbookapp/wordbook-server/internal/store"
	"github.com/wordbookapp/wordbook-server/internal/validation"
)

// WordBookService orchestrates wordbook and card operations with
// visibility enforcement and search index maintenance.
type WordBookService struct {
	store     *store.Store
	search    *search.Index
	images    *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewWordBookService creates a new wordbook service. search and images
// may be nil in tests; the corresponding features degrade gracefully.
func NewWordBookService(store *store.Store, searchIndex *search.Index, imageStorage *images.Storage, validator *validation.Validator, logger *slog.Logger) *WordBookService {
	return &WordBookService{
		store:     store,
		search:    searchIndex,
		images:    imageStorage,
		validator: validator,
		logger:    logger,
	}
}

// CreateWordBookInput carries the caller-settable fields for a new
// wordbook. Tags are attached separately through the tag service.
type CreateWordBookInput struct {
	Title           string `json:"title" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=500"`
	IsPublic        bool   `json:"is_public"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor"`
}

// UpdateWordBookInput carries partial updates; nil fields are untouched.
type UpdateWordBookInput struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPublic        *bool   `json:"is_public,omitempty"`
	IsPinned        *bool   `json:"is_pinned,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
}

// WordBookDetail is a wordbook with its derived display state.
type WordBookDetail struct {
	WordBook      *domain.WordBook `json:"wordbook"`
	OwnerUsername string           `json:"owner_username,omitempty"`
	Tags          []domain.Tag     `json:"tags,omitempty"`
	CardCount     int              `json:"card_count"`
	LikeCount     int              `json:"like_count"`
	BookmarkCount int              `json:"bookmark_count"`
	Liked         bool             `json:"liked"`
	Bookmarked    bool             `json:"bookmarked"`
}

// CreateWordBook creates a new wordbook owned by the viewer.
func (s *WordBookService) CreateWordBook(ctx context.Context, viewer domain.Viewer, input CreateWordBookInput) (*domain.WordBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("wb")
	if err != nil {
		return nil, fmt.Errorf("generate wordbook ID: %w", err)
	}

	wb := &domain.WordBook{
		ID:              bookID,
		OwnerID:         viewer.ID,
		Title:           input.Title,
		Description:     input.Description,
		IsPublic:        input.IsPublic,
		BackgroundColor: input.BackgroundColor,
	}
	if err := s.store.CreateWordBook(ctx, wb); err != nil {
		return nil, fmt.Errorf("create wordbook: %w", err)
	}

	syncSearchDocument(ctx, s.store, s.search, s.logger, wb)

	s.logger.Info("wordbook created",
		"wordbook_id", bookID,
		"owner_id", viewer.ID,
		"public", wb.IsPublic,
	)

	return wb, nil
}

// GetWordBook retrieves a wordbook with counts and the viewer's like and
// bookmark state. Out-of-scope books surface as NotFound.
func (s *WordBookService) GetWordBook(ctx context.Context, viewer domain.Viewer, wordBookID string) (*WordBookDetail, error) {
	wb, err := viewableWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, viewer, wb)
}

// ListOrder selects the browse-page ordering.
type ListOrder string

const (
	// OrderNew lists newest books first.
	OrderNew ListOrder = "new"
	// OrderPopular lists books by like count, recency as tiebreaker.
	OrderPopular ListOrder = "popular"
)

// ListWordBooks returns the wordbooks visible to the viewer in the
// requested order, with the total matching count for pagination.
func (s *WordBookService) ListWordBooks(ctx context.Context, viewer domain.Viewer, order ListOrder, limit, offset int) ([]*domain.WordBook, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		return nil, 0, apperrors.BadRequest("limit must be at most 100")
	}
	if offset < 0 {
		return nil, 0, apperrors.BadRequest("offset must not be negative")
	}

	switch order {
	case "", OrderNew:
		return s.store.ListWordBooks(ctx, domain.ScopeFor(viewer), limit, offset)
	case OrderPopular:
	default:
		return nil, 0, apperrors.BadRequest("order must be new or popular")
	}

	// Popular ordering needs like counts for the whole scope before the
	// page can be cut.
	books, total, err := s.store.ListWordBooks(ctx, domain.ScopeFor(viewer), 0, 0)
	if err != nil {
		return nil, 0, err
	}

	likes := make(map[string]int, len(books))
	for _, wb := range books {
		if likes[wb.ID], err = s.store.CountMarksForTarget(ctx, domain.MarkLike, wb.ID); err != nil {
			return nil, 0, fmt.Errorf("count likes: %w", err)
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		return likes[books[i].ID] > likes[books[j].ID]
	})

	if offset >= len(books) {
		return []*domain.WordBook{}, total, nil
	}
	books = books[offset:]
	if len(books) > limit {
		books = books[:limit]
	}
	return books, total, nil
}

// ListMyWordBooks returns every wordbook owned by the viewer.
func (s *WordBookService) ListMyWordBooks(ctx context.Context, viewer domain.Viewer) ([]*domain.WordBook, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	return s.store.ListWordBooksByOwner(ctx, viewer.ID)
}

// SearchWordBooks runs a full-text query over public wordbooks. Hits are
// re-checked against the live store so a stale index entry can never
// surface a book that has since gone private.
func (s *WordBookService) SearchWordBooks(ctx context.Context, viewer domain.Viewer, params search.Params) ([]*domain.WordBook, int, error) {
	if s.search == nil {
		return nil, 0, apperrors.Internal("search is not configured")
	}
	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search wordbooks: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	books, err := loadViewableWordBooks(ctx, s.store, viewer, ids)
	if err != nil {
		return nil, 0, err
	}
	return books, int(result.Total), nil
}

// UpdateWordBook applies a partial update. Only the owner or an admin may
// update; a public-flag flip resyncs the search index.
func (s *WordBookService) UpdateWordBook(ctx context.Context, viewer domain.Viewer, wordBookID string, input UpdateWordBookInput) (*domain.WordBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	wb, err := ownedWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		wb.Title = *input.Title
	}
	if input.Description != nil {
		wb.Description = *input.Description
	}
	if input.IsPublic != nil {
		wb.IsPublic = *input.IsPublic
	}
	if input.IsPinned != nil {
		wb.IsPinned = *input.IsPinned
	}
	if input.BackgroundColor != nil {
		wb.BackgroundColor = *input.BackgroundColor
	}
	wb.Touch()

	if err := s.store.UpdateWordBook(ctx, wb); err != nil {
		return nil, fmt.Errorf("update wordbook: %w", err)
	}

	syncSearchDocument(ctx, s.store, s.search, s.logger, wb)

	s.logger.Info("wordbook updated", "wordbook_id", wb.ID, "owner_id", wb.OwnerID)
	return wb, nil
}

// DeleteWordBook removes a wordbook with all its cards, marks, and tag
// associations. Owner or admin only.
func (s *WordBookService) DeleteWordBook(ctx context.Context, viewer domain.Viewer, wordBookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb, err := ownedWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return err
	}

	cards, err := s.store.ListCardsByWordBook(ctx, wb.ID)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}

	if err := s.store.DeleteWordBook(ctx, wb.ID); err != nil {
		return fmt.Errorf("delete wordbook: %w", err)
	}

	dropSearchDocument(s.search, s.logger, wb.ID)
	if s.images != nil {
		for _, card := range cards {
			if card.ImageURL == "" {
				continue
			}
			if err := s.images.Delete(card.ID); err != nil {
				s.logger.Warn("delete card image failed", "card_id", card.ID, "error", err)
			}
		}
	}

	s.logger.Info("wordbook deleted",
		"wordbook_id", wb.ID,
		"owner_id", wb.OwnerID,
		"deleted_by", viewer.ID,
	)
	return nil
}

func (s *WordBookService) detail(ctx context.Context, viewer domain.Viewer, wb *domain.WordBook) (*WordBookDetail, error) {
	d := &WordBookDetail{WordBook: wb}

	if owner, err := s.store.GetUser(ctx, wb.OwnerID); err == nil {
		d.OwnerUsername = owner.Username
	}
	for _, tagID := range wb.TagIDs {
		tag, err := s.store.GetTag(ctx, tagID)
		if err != nil {
			continue
		}
		d.Tags = append(d.Tags, *tag)
	}

	var err error
	if d.CardCount, err = s.store.CountCardsByWordBook(ctx, wb.ID); err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	if d.LikeCount, err = s.store.CountMarksForTarget(ctx, domain.MarkLike, wb.ID); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if d.BookmarkCount, err = s.store.CountMarksForTarget(ctx, domain.MarkBookmark, wb.ID); err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}

	if viewer.Authenticated {
		if d.Liked, err = s.store.HasMark(ctx, domain.MarkLike, viewer.ID, wb.ID); err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		if d.Bookmarked, err = s.store.HasMark(ctx, domain.MarkBookmark, viewer.ID, wb.ID); err != nil {
			return nil, fmt.Errorf("check bookmark: %w", err)
		}
	}

	return d, nil
}
