package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	testStore, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	})
	return testStore
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedServiceUser(t *testing.T, s *store.Store, id, username string, role domain.Role) domain.Viewer {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:        id,
		Username:  username,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Users.Create(context.Background(), id, user))
	return domain.Viewer{
		ID:            id,
		Username:      username,
		Role:          role,
		Authenticated: true,
	}
}

func seedServiceWordBook(t *testing.T, s *store.Store, id, ownerID string, public bool) *domain.WordBook {
	t.Helper()
	now := time.Now()
	wb := &domain.WordBook{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Book " + id,
		IsPublic:  public,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateWordBook(context.Background(), wb))
	return wb
}

func seedServiceCard(t *testing.T, s *store.Store, id, wordBookID, front, back string) *domain.WordCard {
	t.Helper()
	now := time.Now()
	card := &domain.WordCard{
		ID:         id,
		WordBookID: wordBookID,
		FrontText:  front,
		BackText:   back,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateCard(context.Background(), card))
	return card
}
