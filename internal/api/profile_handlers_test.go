package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

func TestGetMyProfile_LazyDefaults(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Get("/api/v1/me/profile", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[ProfileResponse](t, resp.Body.Bytes())
	assert.Equal(t, "user-1", envelope.Data.UserID)
	assert.Equal(t, domain.DefaultBackgroundColor, envelope.Data.BackgroundColor)
	assert.Empty(t, envelope.Data.Avatar.Kind)
}

func TestSetPresetAvatar(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Put("/api/v1/me/avatar/preset", bearer(token), map[string]any{
		"name": "fox.png",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[ProfileResponse](t, resp.Body.Bytes())
	assert.Equal(t, "preset", envelope.Data.Avatar.Kind)
	assert.Equal(t, "fox.png", envelope.Data.Avatar.Preset)
	assert.Empty(t, envelope.Data.Avatar.CustomURL)
}

func TestSetPresetAvatar_UnknownRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Put("/api/v1/me/avatar/preset", bearer(token), map[string]any{
		"name": "dragon.png",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSetBackgroundColor_PaletteOnly(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Put("/api/v1/me/background", bearer(token), map[string]any{
		"color": "#FFE4E1",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[ProfileResponse](t, resp.Body.Bytes())
	assert.Equal(t, "#FFE4E1", envelope.Data.BackgroundColor)

	resp = ts.api.Put("/api/v1/me/background", bearer(token), map[string]any{
		"color": "#123456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProfileOptions(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/profile/options")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[struct {
		PresetAvatars    []string `json:"preset_avatars"`
		BackgroundColors []string `json:"background_colors"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, domain.PresetAvatars, envelope.Data.PresetAvatars)
	assert.Equal(t, domain.BackgroundColors, envelope.Data.BackgroundColors)
}

func TestGetUserProfile_Public(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Put("/api/v1/me/avatar/preset", bearer(token), map[string]any{
		"name": "owl.png",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// No auth needed to view another user's profile.
	resp = ts.api.Get("/api/v1/users/user-1/profile")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[ProfileResponse](t, resp.Body.Bytes())
	assert.Equal(t, "owl.png", envelope.Data.Avatar.Preset)
}

func TestMyPage_Aggregates(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)
	likerToken := ts.seedUser(t, "liker", "liker", domain.RoleMember)
	ts.seedWordBook(t, "wb-mine", "user-1", true)
	ts.seedCard(t, "card-1", "wb-mine", "apple", "a fruit")
	ts.seedWordBook(t, "wb-other", "liker", true)

	resp := ts.api.Post("/api/v1/wordbooks/wb-mine/like", bearer(likerToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/wordbooks/wb-other/bookmark", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/cards/card-1/star", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[MyPageResponse](t, resp.Body.Bytes())
	assert.Equal(t, "alice", envelope.Data.User.Username)
	require.Len(t, envelope.Data.WordBooks, 1)
	assert.Equal(t, "wb-mine", envelope.Data.WordBooks[0].ID)
	require.Len(t, envelope.Data.Bookmarked, 1)
	assert.Equal(t, "wb-other", envelope.Data.Bookmarked[0].ID)
	require.Len(t, envelope.Data.StarredCards, 1)
	assert.Equal(t, "card-1", envelope.Data.StarredCards[0].ID)
	assert.Equal(t, 1, envelope.Data.LikesReceived)
}

func TestAdminStats_Gated(t *testing.T) {
	ts := newTestServer(t)
	memberToken := ts.seedUser(t, "member", "member", domain.RoleMember)
	adminToken := ts.seedUser(t, "admin", "admin", domain.RoleAdmin)
	ts.seedWordBook(t, "wb-1", "member", true)
	ts.seedCard(t, "card-1", "wb-1", "apple", "a fruit")

	resp := ts.api.Get("/api/v1/admin/stats", bearer(memberToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/admin/stats")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/admin/stats", bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope := decodeEnvelope[AdminStatsResponse](t, resp.Body.Bytes())
	assert.Equal(t, 2, envelope.Data.Users)
	assert.Equal(t, 1, envelope.Data.WordBooks)
	assert.Equal(t, 1, envelope.Data.PublicWordBooks)
	assert.Equal(t, 1, envelope.Data.Cards)
}

func TestAdminDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "victim", "victim", domain.RoleMember)
	adminToken := ts.seedUser(t, "admin", "admin", domain.RoleAdmin)
	ts.seedWordBook(t, "wb-1", "victim", true)

	resp := ts.api.Delete("/api/v1/admin/users/victim", bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/wordbooks/wb-1", bearer(adminToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Self-deletion is refused.
	resp = ts.api.Delete("/api/v1/admin/users/admin", bearer(adminToken))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminBackups(t *testing.T) {
	ts := newTestServer(t)
	memberToken := ts.seedUser(t, "member", "member", domain.RoleMember)
	adminToken := ts.seedUser(t, "admin", "admin", domain.RoleAdmin)
	ts.seedWordBook(t, "wb-1", "member", true)
	ts.seedCard(t, "card-1", "wb-1", "apple", "a fruit")

	resp := ts.api.Post("/api/v1/admin/backups", bearer(memberToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/admin/backups", bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decodeEnvelope[BackupCreatedResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, 2, created.Data.Counts.Users)
	assert.Equal(t, 1, created.Data.Counts.WordBooks)
	assert.Equal(t, 1, created.Data.Counts.Cards)

	resp = ts.api.Get("/api/v1/admin/backups", bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	list := decodeEnvelope[struct {
		Backups []BackupResponse `json:"backups"`
	}](t, resp.Body.Bytes())
	require.Len(t, list.Data.Backups, 1)
	assert.Equal(t, created.Data.ID, list.Data.Backups[0].ID)

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Data.ID, bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Data.ID, bearer(adminToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
