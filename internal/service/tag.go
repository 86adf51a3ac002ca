package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/id"
	"github.com/wordbookapp/wordbook-server/internal/search"
	"github.com/wordbookapp/wordbook-server/internal/slug"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// Tag listing bounds.
const (
	defaultTagLimit = 20
	maxTagLimit     = 50
)

// TagService manages the shared tag vocabulary and its wordbook
// associations.
type TagService struct {
	store  *store.Store
	search *search.Index
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, searchIndex *search.Index, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// CreateTag normalizes the raw name and returns the matching tag,
// creating it when no tag with the same slug exists yet. Creation is
// idempotent across spelling variants that normalize to the same slug.
func (s *TagService) CreateTag(ctx context.Context, viewer domain.Viewer, rawName string) (*domain.Tag, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := requireViewer(viewer); err != nil {
		return nil, false, err
	}

	name := slug.NormalizeName(rawName)
	if name == "" {
		return nil, false, apperrors.BadRequest("tag name must not be empty")
	}
	if utf8.RuneCountInString(name) > domain.MaxTagNameLength {
		return nil, false, apperrors.BadRequestf("tag name must be at most %d characters", domain.MaxTagNameLength)
	}
	tagSlug := slug.Make(name)
	if tagSlug == "" {
		return nil, false, apperrors.BadRequest("tag name has no indexable characters")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag ID: %w", err)
	}

	tag, created, err := s.store.FindOrCreateTagBySlug(ctx, &domain.Tag{
		ID:        tagID,
		Name:      name,
		Slug:      tagSlug,
		CreatorID: viewer.ID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("find or create tag: %w", err)
	}

	if created {
		s.logger.Info("tag created", "tag_id", tag.ID, "slug", tag.Slug, "creator_id", viewer.ID)
	}
	return tag, created, nil
}

// GetTag retrieves a tag by id.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, notFound(err, "tag not found")
	}
	return tag, nil
}

// ListTagsInput carries the listing parameters. Zero values take the
// defaults; out-of-range values are rejected before touching storage.
type ListTagsInput struct {
	Search string
	Order  domain.TagOrder
	Limit  int
	Offset int
}

// ListTags returns tags matching the input, with the total count for
// pagination.
func (s *TagService) ListTags(ctx context.Context, input ListTagsInput) ([]domain.Tag, int, error) {
	if input.Limit == 0 {
		input.Limit = defaultTagLimit
	}
	if input.Limit < 1 || input.Limit > maxTagLimit {
		return nil, 0, apperrors.BadRequestf("limit must be between 1 and %d", maxTagLimit)
	}
	if input.Offset < 0 {
		return nil, 0, apperrors.BadRequest("offset must not be negative")
	}
	if input.Order == "" {
		input.Order = domain.TagOrderNameAsc
	}
	if !input.Order.Valid() {
		return nil, 0, apperrors.BadRequestf("order must be %q or %q", domain.TagOrderNameAsc, domain.TagOrderNameDesc)
	}

	return s.store.ListTags(ctx, input.Search, input.Order, input.Limit, input.Offset)
}

// PopularTags returns the most-used tags with their attachment counts.
func (s *TagService) PopularTags(ctx context.Context, limit int) ([]domain.TagUsage, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxTagLimit {
		limit = maxTagLimit
	}
	return s.store.PopularTags(ctx, limit)
}

// DeleteTag removes a tag. Only its creator or an admin may delete it,
// and only while no wordbook references it.
func (s *TagService) DeleteTag(ctx context.Context, viewer domain.Viewer, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireViewer(viewer); err != nil {
		return err
	}

	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return notFound(err, "tag not found")
	}
	if tag.CreatorID != viewer.ID && !viewer.IsAdmin() {
		return apperrors.Forbidden("only the tag creator can delete it")
	}

	inUse, err := s.store.CountWordBooksForTag(ctx, tag.ID)
	if err != nil {
		return fmt.Errorf("count tag usage: %w", err)
	}
	if inUse > 0 {
		return apperrors.BadRequest("tag is in use")
	}

	if err := s.store.DeleteTag(ctx, tag.ID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.logger.Info("tag deleted", "tag_id", tag.ID, "slug", tag.Slug, "deleted_by", viewer.ID)
	return nil
}

// SetWordBookTags replaces a wordbook's tag set with the union of the
// given tag ids and slugs. Owner only. The whole request fails when any
// reference does not resolve, so a typo never half-applies.
func (s *TagService) SetWordBookTags(ctx context.Context, viewer domain.Viewer, wordBookID string, tagIDs, tagSlugs []string) (*domain.WordBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tagIDs)+len(tagSlugs) > domain.MaxTagsPerWordBook {
		return nil, apperrors.BadRequestf("a wordbook can have at most %d tags", domain.MaxTagsPerWordBook)
	}

	wb, err := ownedWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return nil, err
	}

	// An unresolvable reference is a malformed request, not a missing
	// resource; the whole request is rejected with nothing applied.
	resolved := make([]string, 0, len(tagIDs)+len(tagSlugs))
	seen := make(map[string]struct{}, len(tagIDs)+len(tagSlugs))
	var misses []string
	for _, tagID := range tagIDs {
		tag, err := s.store.GetTag(ctx, tagID)
		if err != nil {
			if errors.Is(err, store.ErrTagNotFound) {
				misses = append(misses, tagID)
				continue
			}
			return nil, fmt.Errorf("resolve tag %q: %w", tagID, err)
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		resolved = append(resolved, tag.ID)
	}
	for _, rawSlug := range tagSlugs {
		normalized := slug.Make(slug.NormalizeName(rawSlug))
		if normalized == "" {
			return nil, apperrors.BadRequestf("tag slug %q is empty after normalization", rawSlug)
		}
		tag, err := s.store.GetTagBySlug(ctx, normalized)
		if err != nil {
			if errors.Is(err, store.ErrTagNotFound) {
				misses = append(misses, rawSlug)
				continue
			}
			return nil, fmt.Errorf("resolve tag %q: %w", rawSlug, err)
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		resolved = append(resolved, tag.ID)
	}
	if len(misses) > 0 {
		return nil, apperrors.BadRequestWithDetails("unknown tag references", misses)
	}

	if err := s.store.SetWordBookTags(ctx, wb, resolved); err != nil {
		return nil, fmt.Errorf("set wordbook tags: %w", err)
	}

	syncSearchDocument(ctx, s.store, s.search, s.logger, wb)

	s.logger.Info("wordbook tags set",
		"wordbook_id", wb.ID,
		"tag_count", len(resolved),
	)
	return wb, nil
}

// ListWordBooksByTag returns the viewer-visible wordbooks carrying a tag,
// newest first.
func (s *TagService) ListWordBooksByTag(ctx context.Context, viewer domain.Viewer, tagID string) ([]*domain.WordBook, error) {
	if _, err := s.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	ids, err := s.store.ListWordBookIDsForTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("list wordbooks for tag: %w", err)
	}
	books, err := loadViewableWordBooks(ctx, s.store, viewer, ids)
	if err != nil {
		return nil, err
	}
	store.SortWordBooksNewestFirst(books)
	return books, nil
}
