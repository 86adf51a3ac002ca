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

// Key prefixes for card storage.
const (
	cardPrefix            = "card:"
	cardsByWordBookPrefix = "idx:cards:wordbook:"
)

// CreateCard stores a new card and its wordbook index.
func (s *Store) CreateCard(ctx context.Context, card *domain.WordCard) error {
	if _, err := s.GetWordBook(ctx, card.WordBookID); err != nil {
		return err
	}

	key := []byte(cardPrefix + card.ID)
	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check card exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("marshal card: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		bookKey := fmt.Appendf(nil, "%s%s:%s", cardsByWordBookPrefix, card.WordBookID, card.ID)
		return txn.Set(bookKey, []byte{})
	})
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

// GetCard retrieves a card by ID.
func (s *Store) GetCard(_ context.Context, id string) (*domain.WordCard, error) {
	var card domain.WordCard
	if err := s.get([]byte(cardPrefix+id), &card); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &card, nil
}

// UpdateCard rewrites an existing card row.
func (s *Store) UpdateCard(ctx context.Context, card *domain.WordCard) error {
	if _, err := s.GetCard(ctx, card.ID); err != nil {
		return err
	}
	if err := s.set([]byte(cardPrefix+card.ID), card); err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

// DeleteCard removes a card, its wordbook index, and any stars on it.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return deleteCardInTxn(txn, card)
	})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// deleteCardInTxn removes a card row, its index entry, and its star marks.
// Shared between DeleteCard and the wordbook cascade.
func deleteCardInTxn(txn *badger.Txn, card *domain.WordCard) error {
	if err := deleteMarksForTargetInTxn(txn, domain.MarkCardStar, card.ID); err != nil {
		return err
	}

	bookKey := fmt.Appendf(nil, "%s%s:%s", cardsByWordBookPrefix, card.WordBookID, card.ID)
	if err := txn.Delete(bookKey); err != nil {
		return err
	}
	return txn.Delete([]byte(cardPrefix + card.ID))
}

// ListCardsByWordBook returns a wordbook's cards in insertion order
// (oldest first) — the order the quiz walks them in.
func (s *Store) ListCardsByWordBook(ctx context.Context, wordBookID string) ([]*domain.WordCard, error) {
	prefix := fmt.Appendf(nil, "%s%s:", cardsByWordBookPrefix, wordBookID)

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
		return nil, fmt.Errorf("list cards: %w", err)
	}

	cards := make([]*domain.WordCard, 0, len(ids))
	for _, id := range ids {
		card, err := s.GetCard(ctx, id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

// CountCardsByWordBook returns the number of cards in a wordbook.
func (s *Store) CountCardsByWordBook(_ context.Context, wordBookID string) (int, error) {
	prefix := fmt.Appendf(nil, "%s%s:", cardsByWordBookPrefix, wordBookID)
	return s.countPrefix(prefix)
}

// ListCardsExcludingWordBook returns every card that belongs to any other
// wordbook. This is the external distractor pool for quizzes on small books.
func (s *Store) ListCardsExcludingWordBook(ctx context.Context, wordBookID string) ([]*domain.WordCard, error) {
	var cards []*domain.WordCard

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(cardPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			// Skip index keys under the card prefix, if any future ones appear.
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(cardPrefix):], "idx:") {
				continue
			}

			var card domain.WordCard
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &card)
			})
			if err != nil {
				return fmt.Errorf("unmarshal card: %w", err)
			}

			if card.WordBookID != wordBookID {
				cards = append(cards, &card)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list external cards: %w", err)
	}
	return cards, nil
}
