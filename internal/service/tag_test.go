package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
)

func newTestTagService(t *testing.T) *TagService {
	t.Helper()
	return NewTagService(newTestStore(t), nil, testLogger())
}

func TestTagService_CreateNormalizesAndDedupes(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	tag, created, err := svc.CreateTag(ctx, viewer, "  Business  English ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Business English", tag.Name)
	assert.Equal(t, "business-english", tag.Slug)
	assert.Equal(t, viewer.ID, tag.CreatorID)

	// A spelling variant that folds to the same slug returns the original.
	again, created, err := svc.CreateTag(ctx, viewer, "BUSINESS  ENGLISH")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, again.ID)
	assert.Equal(t, "Business English", again.Name)
}

func TestTagService_CreateRejectsEmptyAndLong(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	_, _, err := svc.CreateTag(ctx, viewer, "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	long := make([]byte, 0, 60)
	for range 60 {
		long = append(long, 'a')
	}
	_, _, err = svc.CreateTag(ctx, viewer, string(long))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestTagService_DeleteCreatorOnly(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	creator := seedServiceUser(t, svc.store, "creator", "alice", domain.RoleMember)
	other := seedServiceUser(t, svc.store, "other", "bob", domain.RoleMember)

	tag, _, err := svc.CreateTag(ctx, creator, "grammar")
	require.NoError(t, err)

	err = svc.DeleteTag(ctx, other, tag.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	require.NoError(t, svc.DeleteTag(ctx, creator, tag.ID))
	_, err = svc.GetTag(ctx, tag.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestTagService_DeleteRefusedWhileInUse(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	creator := seedServiceUser(t, svc.store, "creator", "alice", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "creator", true)

	tag, _, err := svc.CreateTag(ctx, creator, "idioms")
	require.NoError(t, err)

	_, err = svc.SetWordBookTags(ctx, creator, wb.ID, []string{tag.ID}, nil)
	require.NoError(t, err)

	err = svc.DeleteTag(ctx, creator, tag.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	// Detaching frees the tag for deletion.
	_, err = svc.SetWordBookTags(ctx, creator, wb.ID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTag(ctx, creator, tag.ID))
}

func TestTagService_SetWordBookTagsAllOrNothing(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "owner", true)

	tag, _, err := svc.CreateTag(ctx, owner, "toeic")
	require.NoError(t, err)

	_, err = svc.SetWordBookTags(ctx, owner, wb.ID, []string{tag.ID, "tag_missing"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	// Nothing was applied.
	got, err := svc.store.GetWordBook(ctx, wb.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TagIDs)
}

func TestTagService_SetWordBookTagsCapOnRequestedCount(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "owner", true)

	// 11 combined references trip the cap before any resolution, even
	// when some of them would not resolve.
	refs := make([]string, 11)
	for i := range refs {
		refs[i] = fmt.Sprintf("tag-%d", i)
	}
	_, err := svc.SetWordBookTags(ctx, owner, wb.ID, refs[:6], refs[6:])
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
	assert.ErrorContains(t, err, "at most")
}

func TestTagService_SetWordBookTagsBySlugAndID(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "owner", true)

	byID, _, err := svc.CreateTag(ctx, owner, "reading")
	require.NoError(t, err)
	bySlug, _, err := svc.CreateTag(ctx, owner, "listening")
	require.NoError(t, err)

	updated, err := svc.SetWordBookTags(ctx, owner, wb.ID, []string{byID.ID}, []string{"Listening"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{byID.ID, bySlug.ID}, updated.TagIDs)
}

func TestTagService_SetWordBookTagsCap(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "owner", true)

	ids := make([]string, 0, domain.MaxTagsPerWordBook+1)
	for i := 0; i <= domain.MaxTagsPerWordBook; i++ {
		tag, _, err := svc.CreateTag(ctx, owner, string(rune('a'+i))+"-tag")
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}

	_, err := svc.SetWordBookTags(ctx, owner, wb.ID, ids, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestTagService_SetWordBookTagsOwnerOnly(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	other := seedServiceUser(t, svc.store, "other", "bob", domain.RoleMember)
	wb := seedServiceWordBook(t, svc.store, "wb-1", "owner", true)

	tag, _, err := svc.CreateTag(ctx, owner, "verbs")
	require.NoError(t, err)

	_, err = svc.SetWordBookTags(ctx, other, wb.ID, []string{tag.ID}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestTagService_ListValidation(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()

	_, _, err := svc.ListTags(ctx, ListTagsInput{Limit: 51})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	_, _, err = svc.ListTags(ctx, ListTagsInput{Offset: -1})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	_, _, err = svc.ListTags(ctx, ListTagsInput{Order: "created_at"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestTagService_ListDefaultsAndOrder(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	for _, name := range []string{"banana", "apple", "cherry"} {
		_, _, err := svc.CreateTag(ctx, viewer, name)
		require.NoError(t, err)
	}

	tags, total, err := svc.ListTags(ctx, ListTagsInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, tags, 3)
	assert.Equal(t, "apple", tags[0].Name)

	tags, _, err = svc.ListTags(ctx, ListTagsInput{Order: domain.TagOrderNameDesc})
	require.NoError(t, err)
	assert.Equal(t, "cherry", tags[0].Name)
}

func TestTagService_ListWordBooksByTagRespectsVisibility(t *testing.T) {
	svc := newTestTagService(t)
	ctx := context.Background()
	owner := seedServiceUser(t, svc.store, "owner", "alice", domain.RoleMember)
	pub := seedServiceWordBook(t, svc.store, "wb-pub", "owner", true)
	priv := seedServiceWordBook(t, svc.store, "wb-priv", "owner", false)

	tag, _, err := svc.CreateTag(ctx, owner, "shared")
	require.NoError(t, err)
	for _, wb := range []string{pub.ID, priv.ID} {
		_, err = svc.SetWordBookTags(ctx, owner, wb, []string{tag.ID}, nil)
		require.NoError(t, err)
	}

	books, err := svc.ListWordBooksByTag(ctx, domain.Anonymous, tag.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, pub.ID, books[0].ID)

	books, err = svc.ListWordBooksByTag(ctx, owner, tag.ID)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}
