package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// Key prefixes for tag storage. The slug index is the uniqueness constraint:
// two display variants of the same name resolve to one tag row.
const (
	tagPrefix            = "tag:"
	tagsBySlugPrefix     = "idx:tags:slug:"
	wordBooksByTagPrefix = "idx:wordbooks:tag:" // idx:wordbooks:tag:{tag}:{wordbook} -> empty
)

// FindOrCreateTagBySlug returns the existing tag for tag.Slug, or stores tag
// as a new row. Lookup and insert run in one transaction so two concurrent
// creates of the same slug cannot both insert; the loser observes the
// winner's row. Returns the canonical tag and whether it was created.
func (s *Store) FindOrCreateTagBySlug(_ context.Context, tag *domain.Tag) (*domain.Tag, bool, error) {
	slugKey := []byte(tagsBySlugPrefix + tag.Slug)

	var result domain.Tag
	var created bool
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey)
		if err == nil {
			// Slug taken: resolve to the existing row. The stored display
			// name wins over the requested one.
			var existingID string
			if err := item.Value(func(val []byte) error {
				existingID = string(val)
				return nil
			}); err != nil {
				return err
			}
			existing, err := txn.Get([]byte(tagPrefix + existingID))
			if err != nil {
				return fmt.Errorf("load tag %s: %w", existingID, err)
			}
			created = false
			return existing.Value(func(val []byte) error {
				return json.Unmarshal(val, &result)
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(tag)
		if err != nil {
			return fmt.Errorf("marshal tag: %w", err)
		}
		if err := txn.Set([]byte(tagPrefix+tag.ID), data); err != nil {
			return err
		}
		if err := txn.Set(slugKey, []byte(tag.ID)); err != nil {
			return err
		}
		created = true
		result = *tag
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("find or create tag: %w", err)
	}

	if created && s.logger != nil {
		s.logger.Info("tag created", "id", result.ID, "name", result.Name, "slug", result.Slug)
	}
	return &result, created, nil
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(_ context.Context, id string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := s.get([]byte(tagPrefix+id), &tag); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// GetTagBySlug retrieves a tag through the slug index.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tagsBySlugPrefix + slug))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return s.GetTag(ctx, id)
}

// DeleteTag removes a tag, its slug index, and every link to a wordbook.
// Wordbooks that carried the tag have it pulled from their tag list.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return err
	}

	linkPrefix := fmt.Appendf(nil, "%s%s:", wordBooksByTagPrefix, id)

	err = s.db.Update(func(txn *badger.Txn) error {
		var bookIDs []string
		opts := badger.DefaultIteratorOptions
		opts.Prefix = linkPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		for it.Seek(linkPrefix); it.ValidForPrefix(linkPrefix); it.Next() {
			key := string(it.Item().Key())
			bookIDs = append(bookIDs, key[len(linkPrefix):])
		}
		it.Close()

		for _, bookID := range bookIDs {
			item, err := txn.Get([]byte(wordBookPrefix + bookID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			var wb domain.WordBook
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &wb)
			}); err != nil {
				return err
			}

			kept := wb.TagIDs[:0]
			for _, tagID := range wb.TagIDs {
				if tagID != id {
					kept = append(kept, tagID)
				}
			}
			wb.TagIDs = kept

			data, err := json.Marshal(&wb)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(wordBookPrefix+bookID), data); err != nil {
				return err
			}
			if err := txn.Delete(fmt.Appendf(nil, "%s%s:%s", wordBooksByTagPrefix, id, bookID)); err != nil {
				return err
			}
		}

		if err := txn.Delete([]byte(tagsBySlugPrefix + tag.Slug)); err != nil {
			return err
		}
		return txn.Delete([]byte(tagPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("tag deleted", "id", id, "slug", tag.Slug)
	}
	return nil
}

// ListTags returns tags whose name contains search (case-insensitive),
// ordered per order, paginated by limit and offset. The second return is
// the total match count before pagination.
func (s *Store) ListTags(ctx context.Context, search string, order domain.TagOrder, limit, offset int) ([]domain.Tag, int, error) {
	needle := strings.ToLower(strings.TrimSpace(search))

	var tags []domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(tagPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var tag domain.Tag
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tag)
			}); err != nil {
				return err
			}
			if needle != "" && !strings.Contains(strings.ToLower(tag.Name), needle) {
				continue
			}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}

	sort.Slice(tags, func(i, j int) bool {
		if order == domain.TagOrderNameDesc {
			return tags[i].Name > tags[j].Name
		}
		return tags[i].Name < tags[j].Name
	})

	total := len(tags)
	if offset >= total {
		return []domain.Tag{}, total, nil
	}
	end := min(offset+limit, total)
	return tags[offset:end], total, nil
}

// SetWordBookTags replaces a wordbook's tag set, maintaining the tag link
// keys, and persists the updated row.
func (s *Store) SetWordBookTags(ctx context.Context, wb *domain.WordBook, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := s.GetTag(ctx, tagID); err != nil {
			return err
		}
	}

	old := wb.TagIDs
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, tagID := range old {
			linkKey := fmt.Appendf(nil, "%s%s:%s", wordBooksByTagPrefix, tagID, wb.ID)
			if err := txn.Delete(linkKey); err != nil {
				return err
			}
		}
		for _, tagID := range tagIDs {
			linkKey := fmt.Appendf(nil, "%s%s:%s", wordBooksByTagPrefix, tagID, wb.ID)
			if err := txn.Set(linkKey, []byte{}); err != nil {
				return err
			}
		}

		wb.TagIDs = tagIDs
		wb.Touch()
		data, err := json.Marshal(wb)
		if err != nil {
			return fmt.Errorf("marshal wordbook: %w", err)
		}
		return txn.Set([]byte(wordBookPrefix+wb.ID), data)
	})
	if err != nil {
		wb.TagIDs = old
		return fmt.Errorf("set wordbook tags: %w", err)
	}
	return nil
}

// CountWordBooksForTag counts how many wordbooks carry a tag.
func (s *Store) CountWordBooksForTag(_ context.Context, tagID string) (int, error) {
	prefix := fmt.Appendf(nil, "%s%s:", wordBooksByTagPrefix, tagID)
	return s.countPrefix(prefix)
}

// PopularTags returns the most-used tags with their usage counts, most used
// first, name ascending on ties. Tags with zero links are skipped.
func (s *Store) PopularTags(ctx context.Context, limit int) ([]domain.TagUsage, error) {
	counts := map[string]int{}
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(wordBooksByTagPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			rest := key[len(prefix):]
			tagID, _, ok := strings.Cut(rest, ":")
			if !ok {
				continue
			}
			counts[tagID]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count tag usage: %w", err)
	}

	usages := make([]domain.TagUsage, 0, len(counts))
	for tagID, count := range counts {
		tag, err := s.GetTag(ctx, tagID)
		if err != nil {
			if errors.Is(err, ErrTagNotFound) {
				continue
			}
			return nil, err
		}
		usages = append(usages, domain.TagUsage{Tag: tag, Count: count})
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Count != usages[j].Count {
			return usages[i].Count > usages[j].Count
		}
		return usages[i].Tag.Name < usages[j].Tag.Name
	})

	if limit > 0 && len(usages) > limit {
		usages = usages[:limit]
	}
	return usages, nil
}

// ListWordBookIDsForTag returns the ids of all wordbooks carrying a tag,
// in key order. Visibility filtering is the caller's job.
func (s *Store) ListWordBookIDsForTag(_ context.Context, tagID string) ([]string, error) {
	prefix := fmt.Appendf(nil, "%s%s:", wordBooksByTagPrefix, tagID)
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wordbook ids for tag: %w", err)
	}
	return ids, nil
}

// CountTags counts all tag rows, for the admin dashboard.
func (s *Store) CountTags(_ context.Context) (int, error) {
	return s.countPrefix([]byte(tagPrefix))
}
