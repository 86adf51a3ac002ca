package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user through the username index. Lookup is
// case-insensitive.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "username", username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteUserCascade removes a user and everything hanging off them: owned
// wordbooks (each with its own card, mark, and tag-link cascade), marks the
// user placed on other people's content, the profile, and the user row.
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	books, err := s.ListWordBooksByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, wb := range books {
		if err := s.DeleteWordBook(ctx, wb.ID); err != nil {
			return fmt.Errorf("cascade wordbook %s: %w", wb.ID, err)
		}
	}

	if err := s.DeleteMarksByUser(ctx, userID); err != nil {
		return fmt.Errorf("cascade marks: %w", err)
	}
	if err := s.Profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("cascade profile: %w", err)
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user deleted", "id", userID, "wordbooks_removed", len(books))
	}
	return nil
}

// CountUsers counts all user rows, for the admin dashboard.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.Users.Count(ctx)
}

// CountWordBooks counts all wordbook rows, for the admin dashboard.
func (s *Store) CountWordBooks(_ context.Context) (int, error) {
	return s.countPrefix([]byte(wordBookPrefix))
}

// CountCards counts all card rows, for the admin dashboard.
func (s *Store) CountCards(_ context.Context) (int, error) {
	return s.countPrefix([]byte(cardPrefix))
}
