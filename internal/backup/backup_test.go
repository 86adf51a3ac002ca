package backup

import (
	"archive/zip"
	"bufio"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	tmpDir := t.TempDir()
	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.DiscardHandler)
	return NewService(st, filepath.Join(tmpDir, "backups"), "test", logger)
}

func seedData(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	for _, u := range []struct{ id, username string }{
		{"user-1", "alice"},
		{"user-2", "bob"},
	} {
		user := &domain.User{ID: u.id, Username: u.username, Role: domain.RoleMember, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.Users.Create(ctx, user.ID, user))
	}

	wb := &domain.WordBook{ID: "wb-1", OwnerID: "user-1", Title: "TOEIC Words", IsPublic: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateWordBook(ctx, wb))

	for _, c := range []struct{ id, front, back string }{
		{"card-1", "apple", "a fruit"},
		{"card-2", "run", "to move fast"},
	} {
		card := &domain.WordCard{ID: c.id, WordBookID: wb.ID, FrontText: c.front, BackText: c.back, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.CreateCard(ctx, card))
	}

	tag, _, err := s.FindOrCreateTagBySlug(ctx, &domain.Tag{
		ID:        "tag-1",
		Name:      "TOEIC",
		Slug:      "toeic",
		CreatorID: "user-1",
	})
	require.NoError(t, err)
	require.NoError(t, s.SetWordBookTags(ctx, wb, []string{tag.ID}))

	_, err = s.ToggleMark(ctx, domain.MarkLike, "user-2", wb.ID)
	require.NoError(t, err)
	_, err = s.ToggleMark(ctx, domain.MarkCardStar, "user-2", "card-1")
	require.NoError(t, err)
}

func countLines(t *testing.T, r io.Reader) int {
	t.Helper()
	n := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if len(sc.Bytes()) > 0 {
			n++
		}
	}
	require.NoError(t, sc.Err())
	return n
}

func TestCreate_ArchiveContents(t *testing.T) {
	svc := newTestService(t)
	seedData(t, svc.store)

	result, err := svc.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Counts.Users)
	assert.Equal(t, 1, result.Counts.WordBooks)
	assert.Equal(t, 2, result.Counts.Cards)
	assert.Equal(t, 1, result.Counts.Tags)
	assert.Equal(t, 2, result.Counts.Marks)

	zr, err := zip.OpenReader(result.Path)
	require.NoError(t, err)
	defer zr.Close()

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range []string{"manifest.json", "users.jsonl", "profiles.jsonl", "tags.jsonl", "wordbooks.jsonl", "cards.jsonl", "marks.jsonl"} {
		require.Contains(t, files, name)
	}

	mf, err := files["manifest.json"].Open()
	require.NoError(t, err)
	defer mf.Close()
	data, err := io.ReadAll(mf)
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, FormatVersion, manifest.Version)
	assert.Equal(t, "test", manifest.ServerVersion)
	assert.Equal(t, result.Counts, manifest.Counts)

	cf, err := files["cards.jsonl"].Open()
	require.NoError(t, err)
	defer cf.Close()
	assert.Equal(t, 2, countLines(t, cf))

	mkf, err := files["marks.jsonl"].Open()
	require.NoError(t, err)
	defer mkf.Close()
	assert.Equal(t, 2, countLines(t, mkf))
}

func TestListGetDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	backups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups)

	result, err := svc.Create(ctx)
	require.NoError(t, err)

	backups, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, result.ID, backups[0].ID)
	assert.Equal(t, result.Size, backups[0].Size)

	got, err := svc.Get(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, result.ID))

	_, err = svc.Get(ctx, result.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	err = svc.Delete(ctx, result.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCreate_EmptyStore(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{}, result.Counts)
	assert.Positive(t, result.Size)
}
