package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// Key prefixes for mark storage. The pair key is the uniqueness constraint:
// at most one row can exist per (kind, user, target).
const (
	markPrefix          = "mark:"           // mark:{kind}:{user}:{target} -> Mark JSON
	marksByTargetPrefix = "idx:marks:target:" // idx:marks:target:{kind}:{target}:{user} -> empty
)

// toggleRetries bounds retry on transaction conflicts. Badger's SSI aborts
// one of two overlapping toggles; the loser re-reads and lands correctly.
const toggleRetries = 3

func markKey(kind domain.MarkKind, userID, targetID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s:%s", markPrefix, kind, userID, targetID)
}

func markTargetKey(kind domain.MarkKind, targetID, userID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s:%s", marksByTargetPrefix, kind, targetID, userID)
}

// ToggleMark flips the (user, target) association in a single transaction:
// create if absent, delete if present. Returns the resulting active state.
// There is no read-then-branch across round trips — the check and the write
// commit together, so a concurrent duplicate toggle cannot double-create or
// double-delete.
func (s *Store) ToggleMark(_ context.Context, kind domain.MarkKind, userID, targetID string) (bool, error) {
	key := markKey(kind, userID, targetID)
	idxKey := markTargetKey(kind, targetID, userID)

	var active bool
	var err error
	for attempt := 0; attempt < toggleRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			_, getErr := txn.Get(key)
			switch {
			case getErr == nil:
				// Row exists: toggle off.
				active = false
				if err := txn.Delete(key); err != nil {
					return err
				}
				return txn.Delete(idxKey)
			case errors.Is(getErr, badger.ErrKeyNotFound):
				// Row absent: toggle on.
				active = true
				mark := domain.Mark{
					Kind:      kind,
					UserID:    userID,
					TargetID:  targetID,
					CreatedAt: time.Now(),
				}
				data, err := json.Marshal(mark)
				if err != nil {
					return fmt.Errorf("marshal mark: %w", err)
				}
				if err := txn.Set(key, data); err != nil {
					return err
				}
				return txn.Set(idxKey, []byte{})
			default:
				return getErr
			}
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", kind, err)
	}

	if s.logger != nil {
		s.logger.Info("mark toggled", "kind", kind, "user_id", userID, "target_id", targetID, "active", active)
	}
	return active, nil
}

// HasMark reports whether the (user, target) association exists.
func (s *Store) HasMark(_ context.Context, kind domain.MarkKind, userID, targetID string) (bool, error) {
	return s.exists(markKey(kind, userID, targetID))
}

// CountMarksForTarget counts how many users have marked a target.
func (s *Store) CountMarksForTarget(_ context.Context, kind domain.MarkKind, targetID string) (int, error) {
	prefix := fmt.Appendf(nil, "%s%s:%s:", marksByTargetPrefix, kind, targetID)
	return s.countPrefix(prefix)
}

// ListMarkedTargetIDs returns the ids of every target the user has marked,
// in key order.
func (s *Store) ListMarkedTargetIDs(_ context.Context, kind domain.MarkKind, userID string) ([]string, error) {
	prefix := fmt.Appendf(nil, "%s%s:%s:", markPrefix, kind, userID)

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
		return nil, fmt.Errorf("list marked targets: %w", err)
	}
	return ids, nil
}

// CountMarksByKind counts all marks of one kind, for the admin dashboard.
func (s *Store) CountMarksByKind(_ context.Context, kind domain.MarkKind) (int, error) {
	prefix := fmt.Appendf(nil, "%s%s:", markPrefix, kind)
	return s.countPrefix(prefix)
}

// deleteMarksForTargetInTxn removes every mark on a target: index entries
// first to find the users, then the pair rows. Used by delete cascades.
func deleteMarksForTargetInTxn(txn *badger.Txn, kind domain.MarkKind, targetID string) error {
	prefix := fmt.Appendf(nil, "%s%s:%s:", marksByTargetPrefix, kind, targetID)

	var userIDs []string
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		userIDs = append(userIDs, key[len(prefix):])
	}
	it.Close()

	for _, userID := range userIDs {
		if err := txn.Delete(markKey(kind, userID, targetID)); err != nil {
			return err
		}
		if err := txn.Delete(markTargetKey(kind, targetID, userID)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMarksByUser removes every mark a user has placed, of every kind.
// Part of the owner-deletion cascade.
func (s *Store) DeleteMarksByUser(_ context.Context, userID string) error {
	kinds := []domain.MarkKind{domain.MarkLike, domain.MarkBookmark, domain.MarkCardStar}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, kind := range kinds {
			prefix := fmt.Appendf(nil, "%s%s:%s:", markPrefix, kind, userID)

			var targetIDs []string
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				key := string(it.Item().Key())
				targetIDs = append(targetIDs, key[len(prefix):])
			}
			it.Close()

			for _, targetID := range targetIDs {
				if err := txn.Delete(markKey(kind, userID, targetID)); err != nil {
					return err
				}
				if err := txn.Delete(markTargetKey(kind, targetID, userID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
