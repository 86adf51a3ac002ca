package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "wordbook-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func seedUser(t *testing.T, s *Store, id, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        id,
		Username:  username,
		Role:      domain.RoleMember,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.Users.Create(context.Background(), id, user))
	return user
}

func seedWordBook(t *testing.T, s *Store, id, ownerID, title string, public bool) *domain.WordBook {
	t.Helper()

	wb := &domain.WordBook{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		IsPublic:  public,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.CreateWordBook(context.Background(), wb))
	return wb
}

func seedCard(t *testing.T, s *Store, id, wordBookID, front, back string, createdAt time.Time) *domain.WordCard {
	t.Helper()

	card := &domain.WordCard{
		ID:         id,
		WordBookID: wordBookID,
		FrontText:  front,
		BackText:   back,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, s.CreateCard(context.Background(), card))
	return card
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedUser(t, store, "user-001", "Hanako")

	found, err := store.GetUserByUsername(ctx, "hanako")
	require.NoError(t, err)
	assert.Equal(t, "user-001", found.ID)

	found, err = store.GetUserByUsername(ctx, "  HANAKO  ")
	require.NoError(t, err)
	assert.Equal(t, "user-001", found.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetUser(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascade(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	owner := seedUser(t, store, "user-owner", "owner")
	other := seedUser(t, store, "user-other", "other")

	wb := seedWordBook(t, store, "wb-001", owner.ID, "Owned Book", true)
	seedCard(t, store, "card-001", wb.ID, "apple", "a fruit", time.Now())

	// Other user likes the owner's book; owner stars a card in another book.
	otherBook := seedWordBook(t, store, "wb-002", other.ID, "Other Book", true)
	seedCard(t, store, "card-002", otherBook.ID, "banana", "a fruit", time.Now())

	_, err := store.ToggleMark(ctx, domain.MarkLike, other.ID, wb.ID)
	require.NoError(t, err)
	_, err = store.ToggleMark(ctx, domain.MarkCardStar, owner.ID, "card-002")
	require.NoError(t, err)

	require.NoError(t, store.DeleteUserCascade(ctx, owner.ID))

	_, err = store.GetUser(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.GetWordBook(ctx, wb.ID)
	assert.ErrorIs(t, err, ErrWordBookNotFound)
	_, err = store.GetCard(ctx, "card-001")
	assert.ErrorIs(t, err, ErrCardNotFound)

	// The like on the deleted book went with it.
	count, err := store.CountMarksForTarget(ctx, domain.MarkLike, wb.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The owner's star on someone else's card is gone too.
	has, err := store.HasMark(ctx, domain.MarkCardStar, owner.ID, "card-002")
	require.NoError(t, err)
	assert.False(t, has)

	// The other user and their content survive.
	_, err = store.GetUser(ctx, other.ID)
	require.NoError(t, err)
	_, err = store.GetWordBook(ctx, otherBook.ID)
	require.NoError(t, err)
}

func TestAdminCounts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	for i := range 3 {
		seedUser(t, store, fmt.Sprintf("user-%03d", i), fmt.Sprintf("user%d", i))
	}
	wb := seedWordBook(t, store, "wb-001", "user-000", "Book", true)
	seedWordBook(t, store, "wb-002", "user-001", "Another", false)
	seedCard(t, store, "card-001", wb.ID, "a", "b", time.Now())

	users, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, users)

	books, err := store.CountWordBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, books)

	cards, err := store.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cards)
}
