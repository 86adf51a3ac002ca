package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// Key prefixes for wordbook storage.
const (
	wordBookPrefix        = "wordbook:"
	wordBooksByOwnerPrefix = "idx:wordbooks:owner:"
)

// CreateWordBook stores a new wordbook and its owner index.
func (s *Store) CreateWordBook(_ context.Context, wb *domain.WordBook) error {
	key := []byte(wordBookPrefix + wb.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check wordbook exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(wb)
		if err != nil {
			return fmt.Errorf("marshal wordbook: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		ownerKey := fmt.Appendf(nil, "%s%s:%s", wordBooksByOwnerPrefix, wb.OwnerID, wb.ID)
		return txn.Set(ownerKey, []byte{})
	})
	if err != nil {
		return fmt.Errorf("create wordbook: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("wordbook created", "id", wb.ID, "owner_id", wb.OwnerID, "title", wb.Title)
	}
	return nil
}

// GetWordBook retrieves a wordbook by ID.
func (s *Store) GetWordBook(_ context.Context, id string) (*domain.WordBook, error) {
	var wb domain.WordBook
	if err := s.get([]byte(wordBookPrefix+id), &wb); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrWordBookNotFound
		}
		return nil, fmt.Errorf("get wordbook: %w", err)
	}
	return &wb, nil
}

// UpdateWordBook rewrites an existing wordbook row. The owner never changes,
// so the owner index stays untouched; tag link indexes are maintained by
// SetWordBookTags.
func (s *Store) UpdateWordBook(ctx context.Context, wb *domain.WordBook) error {
	if _, err := s.GetWordBook(ctx, wb.ID); err != nil {
		return err
	}
	if err := s.set([]byte(wordBookPrefix+wb.ID), wb); err != nil {
		return fmt.Errorf("update wordbook: %w", err)
	}
	return nil
}

// DeleteWordBook removes a wordbook and everything hanging off it: cards
// (with their stars), likes, bookmarks, tag links, and the owner index.
func (s *Store) DeleteWordBook(ctx context.Context, id string) error {
	wb, err := s.GetWordBook(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	cards, err := s.ListCardsByWordBook(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, c := range cards {
			if err := deleteCardInTxn(txn, c); err != nil {
				return err
			}
		}

		// Likes and bookmarks on the book.
		for _, kind := range []domain.MarkKind{domain.MarkLike, domain.MarkBookmark} {
			if err := deleteMarksForTargetInTxn(txn, kind, id); err != nil {
				return err
			}
		}

		// Tag links.
		for _, tagID := range wb.TagIDs {
			linkKey := fmt.Appendf(nil, "%s%s:%s", wordBooksByTagPrefix, tagID, id)
			if err := txn.Delete(linkKey); err != nil {
				return err
			}
		}

		ownerKey := fmt.Appendf(nil, "%s%s:%s", wordBooksByOwnerPrefix, wb.OwnerID, id)
		if err := txn.Delete(ownerKey); err != nil {
			return err
		}

		return txn.Delete([]byte(wordBookPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("delete wordbook: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("wordbook deleted", "id", id, "cards", len(cards))
	}
	return nil
}

// ListWordBooksByOwner returns all wordbooks owned by a user, newest first.
func (s *Store) ListWordBooksByOwner(ctx context.Context, ownerID string) ([]*domain.WordBook, error) {
	prefix := fmt.Appendf(nil, "%s%s:", wordBooksByOwnerPrefix, ownerID)

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wordbooks by owner: %w", err)
	}

	books := make([]*domain.WordBook, 0, len(ids))
	for _, id := range ids {
		wb, err := s.GetWordBook(ctx, id)
		if err != nil {
			return nil, err
		}
		books = append(books, wb)
	}

	sortWordBooks(books)
	return books, nil
}

// ListWordBooks returns wordbooks matching the scope predicate, newest
// first, sliced by offset/limit. The returned total counts every match, not
// just the page, so the predicate runs before pagination — count displays
// never reveal hidden rows. A nil scope matches everything; a non-positive
// limit means no cap.
func (s *Store) ListWordBooks(ctx context.Context, scope func(*domain.WordBook) bool, limit, offset int) ([]*domain.WordBook, int, error) {
	var matched []*domain.WordBook

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(wordBookPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var wb domain.WordBook
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &wb)
			})
			if err != nil {
				return fmt.Errorf("unmarshal wordbook: %w", err)
			}

			if scope == nil || scope(&wb) {
				matched = append(matched, &wb)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list wordbooks: %w", err)
	}

	sortWordBooks(matched)
	total := len(matched)

	if offset > 0 {
		if offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[offset:]
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total, nil
}

// SortWordBooksNewestFirst orders books newest first, ID as tiebreaker.
// Exposed for callers that assemble book lists from id sets.
func SortWordBooksNewestFirst(books []*domain.WordBook) {
	sortWordBooks(books)
}

// sortWordBooks orders newest first, with ID as tiebreaker for stability.
func sortWordBooks(books []*domain.WordBook) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID < books[j].ID
	})
}
