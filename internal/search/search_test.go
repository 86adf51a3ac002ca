package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func doc(id, title, description string, tags ...string) *Document {
	return NewDocument(&domain.WordBook{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}, "tester", tags)
}

func TestSearch_TitleAndDescription(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocuments([]*Document{
		doc("wb-001", "TOEIC Vocabulary", "words for the TOEIC exam"),
		doc("wb-002", "Daily Idioms", "common English idioms"),
		doc("wb-003", "Kitchen Words", "vocabulary about cooking"),
	}))

	result, err := idx.Search(ctx, Params{Query: "toeic"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "wb-001", result.Hits[0].ID)
	assert.Equal(t, "TOEIC Vocabulary", result.Hits[0].Title)

	// Description matches too.
	result, err = idx.Search(ctx, Params{Query: "cooking"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "wb-003", result.Hits[0].ID)
}

func TestSearch_Prefix(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(doc("wb-001", "Vocabulary Drill", "")))

	result, err := idx.Search(context.Background(), Params{Query: "voca"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearch_TagFilter(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocuments([]*Document{
		doc("wb-001", "TOEIC Vocabulary", "", "TOEIC", "Exams"),
		doc("wb-002", "TOEIC Grammar", "", "Grammar"),
	}))

	result, err := idx.Search(ctx, Params{Query: "toeic", Tag: "Grammar"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "wb-002", result.Hits[0].ID)

	// Tag filter alone works without a text query.
	result, err = idx.Search(ctx, Params{Tag: "Exams"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "wb-001", result.Hits[0].ID)
}

func TestSearch_Pagination(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocuments([]*Document{
		doc("wb-001", "English One", ""),
		doc("wb-002", "English Two", ""),
		doc("wb-003", "English Three", ""),
	}))

	result, err := idx.Search(ctx, Params{Query: "english", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	assert.Len(t, result.Hits, 2)

	result, err = idx.Search(ctx, Params{Query: "english", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	assert.Len(t, result.Hits, 1)
}

func TestDeleteDocument(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocument(doc("wb-001", "TOEIC Vocabulary", "")))
	require.NoError(t, idx.DeleteDocument("wb-001"))

	result, err := idx.Search(ctx, Params{Query: "toeic"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexDocument_Replaces(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocument(doc("wb-001", "Old Title", "")))
	require.NoError(t, idx.IndexDocument(doc("wb-001", "New Title", "")))

	result, err := idx.Search(ctx, Params{Query: "old"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	result, err = idx.Search(ctx, Params{Query: "new"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestNewIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexDocument(doc("wb-001", "Persistent", "")))
	require.NoError(t, idx.Close())

	idx, err = NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
