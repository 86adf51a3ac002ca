package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
)

func newTestProfileService(t *testing.T) (*ProfileService, *SocialService) {
	t.Helper()
	st := newTestStore(t)
	logger := testLogger()
	return NewProfileService(st, nil, logger), NewSocialService(st, logger)
}

func TestProfileService_LazyCreateDefaults(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	profile, err := svc.GetProfile(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, viewer.ID, profile.UserID)
	assert.Equal(t, domain.DefaultBackgroundColor, profile.BackgroundColor)
	assert.Empty(t, profile.Avatar.Kind)

	// The default was persisted; a second read returns the same row.
	again, err := svc.GetProfile(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, profile.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestProfileService_PresetAvatar(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	profile, err := svc.SetPresetAvatar(ctx, viewer, domain.PresetAvatars[0])
	require.NoError(t, err)
	assert.Equal(t, domain.AvatarPreset, profile.Avatar.Kind)
	assert.Equal(t, domain.PresetAvatars[0], profile.Avatar.Preset)
	assert.Empty(t, profile.Avatar.CustomURL)

	_, err = svc.SetPresetAvatar(ctx, viewer, "no-such-avatar")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestProfileService_BackgroundColorPalette(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()
	viewer := seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	profile, err := svc.SetBackgroundColor(ctx, viewer, domain.BackgroundColors[1])
	require.NoError(t, err)
	assert.Equal(t, domain.BackgroundColors[1], profile.BackgroundColor)

	_, err = svc.SetBackgroundColor(ctx, viewer, "#123456")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestProfileService_RequiresAuth(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, domain.Anonymous)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.MyPage(ctx, domain.Anonymous)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestProfileService_GetProfileByUserDoesNotPersist(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()
	seedServiceUser(t, svc.store, "user-1", "alice", domain.RoleMember)

	profile, err := svc.GetProfileByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBackgroundColor, profile.BackgroundColor)

	_, err = svc.store.Profiles.Get(ctx, "user-1")
	assert.Error(t, err)
}

func TestProfileService_MyPageAggregation(t *testing.T) {
	svc, social := newTestProfileService(t)
	ctx := context.Background()

	me := seedServiceUser(t, svc.store, "me", "alice", domain.RoleMember)
	seedServiceUser(t, svc.store, "fan", "bob", domain.RoleMember)
	fan := domain.Viewer{ID: "fan", Username: "bob", Role: domain.RoleMember, Authenticated: true}

	mine := seedServiceWordBook(t, svc.store, "wb-mine", "me", true)
	theirs := seedServiceWordBook(t, svc.store, "wb-theirs", "fan", true)
	card := seedServiceCard(t, svc.store, "card-1", theirs.ID, "apple", "a fruit")

	_, err := social.ToggleLike(ctx, fan, mine.ID)
	require.NoError(t, err)
	_, err = social.ToggleBookmark(ctx, me, theirs.ID)
	require.NoError(t, err)
	_, err = social.ToggleCardStar(ctx, me, card.ID)
	require.NoError(t, err)

	page, err := svc.MyPage(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "alice", page.User.Username)
	require.Len(t, page.WordBooks, 1)
	assert.Equal(t, mine.ID, page.WordBooks[0].ID)
	require.Len(t, page.Bookmarked, 1)
	assert.Equal(t, theirs.ID, page.Bookmarked[0].ID)
	require.Len(t, page.StarredCards, 1)
	assert.Equal(t, card.ID, page.StarredCards[0].ID)
	assert.Equal(t, 1, page.LikesReceived)
}
