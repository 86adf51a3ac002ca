package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

func TestCreateTag_Normalizes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{
		"name": "  Business   English ",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[TagResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Business English", envelope.Data.Name)
	assert.Equal(t, "business-english", envelope.Data.Slug)
}

func TestCreateTag_DeduplicatesBySlug(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "TOEIC"})
	require.Equal(t, http.StatusOK, resp.Code)
	first := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "toeic"})
	require.Equal(t, http.StatusOK, resp.Code)
	second := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	assert.Equal(t, first.Data.ID, second.Data.ID)
	assert.Equal(t, "TOEIC", second.Data.Name)
}

func TestCreateTag_RejectsUnindexable(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "!!!"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListTags_OrderAndFilter(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "user-1", "alice", domain.RoleMember)

	for _, name := range []string{"grammar", "business", "travel"} {
		resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": name})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/tags?order=-name")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[TagListResponse](t, resp.Body.Bytes())
	require.Len(t, envelope.Data.Tags, 3)
	assert.Equal(t, "travel", envelope.Data.Tags[0].Name)
	assert.Equal(t, "business", envelope.Data.Tags[2].Name)
	assert.Equal(t, 3, envelope.Data.Total)

	resp = ts.api.Get("/api/v1/tags?search=ram")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[TagListResponse](t, resp.Body.Bytes())
	require.Len(t, envelope.Data.Tags, 1)
	assert.Equal(t, "grammar", envelope.Data.Tags[0].Name)
}

func TestSetWordBookTags(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "owner", "owner", domain.RoleMember)
	ts.seedWordBook(t, "wb-1", "owner", true)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "TOEIC"})
	require.Equal(t, http.StatusOK, resp.Code)
	tag := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "Entrance Exam"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Put("/api/v1/wordbooks/wb-1/tags", bearer(token), map[string]any{
		"tag_ids":   []string{tag.Data.ID},
		"tag_slugs": []string{"Entrance Exam"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[WordBookResponse](t, resp.Body.Bytes())
	assert.Len(t, envelope.Data.TagIDs, 2)
	assert.Contains(t, envelope.Data.TagIDs, tag.Data.ID)
}

func TestSetWordBookTags_UnknownSlugFailsWhole(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "owner", "owner", domain.RoleMember)
	ts.seedWordBook(t, "wb-1", "owner", true)

	resp := ts.api.Put("/api/v1/wordbooks/wb-1/tags", bearer(token), map[string]any{
		"tag_slugs": []string{"no-such-tag"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	detail := ts.api.Get("/api/v1/wordbooks/wb-1", bearer(token))
	envelope := decodeEnvelope[WordBookDetailResponse](t, detail.Body.Bytes())
	assert.Empty(t, envelope.Data.TagIDs)
}

func TestDeleteTag_InUseRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "owner", "owner", domain.RoleMember)
	ts.seedWordBook(t, "wb-1", "owner", true)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "TOEIC"})
	require.Equal(t, http.StatusOK, resp.Code)
	tag := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	resp = ts.api.Put("/api/v1/wordbooks/wb-1/tags", bearer(token), map[string]any{
		"tag_ids": []string{tag.Data.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.Data.ID, bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Detach, then delete succeeds.
	resp = ts.api.Put("/api/v1/wordbooks/wb-1/tags", bearer(token), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.Data.ID, bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDeleteTag_CreatorOnly(t *testing.T) {
	ts := newTestServer(t)
	creatorToken := ts.seedUser(t, "creator", "creator", domain.RoleMember)
	otherToken := ts.seedUser(t, "other", "other", domain.RoleMember)
	adminToken := ts.seedUser(t, "admin", "admin", domain.RoleAdmin)

	resp := ts.api.Post("/api/v1/tags", bearer(creatorToken), map[string]any{"name": "mine"})
	require.Equal(t, http.StatusOK, resp.Code)
	tag := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	resp = ts.api.Delete("/api/v1/tags/"+tag.Data.ID, bearer(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.Data.ID, bearer(adminToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestPopularTags(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "owner", "owner", domain.RoleMember)
	ts.seedWordBook(t, "wb-1", "owner", true)
	ts.seedWordBook(t, "wb-2", "owner", true)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "popular"})
	require.Equal(t, http.StatusOK, resp.Code)
	popular := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "niche"})
	require.Equal(t, http.StatusOK, resp.Code)
	niche := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	for _, wb := range []string{"wb-1", "wb-2"} {
		ids := []string{popular.Data.ID}
		if wb == "wb-1" {
			ids = append(ids, niche.Data.ID)
		}
		resp = ts.api.Put("/api/v1/wordbooks/"+wb+"/tags", bearer(token), map[string]any{
			"tag_ids": ids,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp = ts.api.Get("/api/v1/tags/popular")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[struct {
		Tags []TagUsageResponse `json:"tags"`
	}](t, resp.Body.Bytes())
	require.Len(t, envelope.Data.Tags, 2)
	assert.Equal(t, "popular", envelope.Data.Tags[0].Tag.Name)
	assert.Equal(t, 2, envelope.Data.Tags[0].Count)
}

func TestListTagWordBooks_Scoped(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "owner", "owner", domain.RoleMember)
	ts.seedWordBook(t, "wb-pub", "owner", true)
	ts.seedWordBook(t, "wb-priv", "owner", false)

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "shared"})
	require.Equal(t, http.StatusOK, resp.Code)
	tag := decodeEnvelope[TagResponse](t, resp.Body.Bytes())

	for _, wb := range []string{"wb-pub", "wb-priv"} {
		resp = ts.api.Put("/api/v1/wordbooks/"+wb+"/tags", bearer(token), map[string]any{
			"tag_ids": []string{tag.Data.ID},
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	// Anonymous sees only the public book under the tag.
	resp = ts.api.Get("/api/v1/tags/" + tag.Data.ID + "/wordbooks")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[WordBookListResponse](t, resp.Body.Bytes())
	require.Len(t, envelope.Data.WordBooks, 1)
	assert.Equal(t, "wb-pub", envelope.Data.WordBooks[0].ID)

	// The owner sees both.
	resp = ts.api.Get("/api/v1/tags/"+tag.Data.ID+"/wordbooks", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[WordBookListResponse](t, resp.Body.Bytes())
	assert.Len(t, envelope.Data.WordBooks, 2)
}
