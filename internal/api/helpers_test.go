package api

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/wordbookapp/wordbook-server/internal/backup"
	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/identity"
	"github.com/wordbookapp/wordbook-server/internal/service"
	"github.com/wordbookapp/wordbook-server/internal/store"
	"github.com/wordbookapp/wordbook-server/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// testServer wraps the API server with a humatest client and seed helpers.
type testServer struct {
	*Server
	api      humatest.TestAPI
	verifier *identity.Verifier
	quiz     *service.QuizService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "api-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	verifier, err := identity.NewVerifier(key, nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	quizService := service.NewQuizService(st, logger, service.QuizOptions{})
	t.Cleanup(quizService.Stop)

	// nil search index and image storage; those paths have their own tests.
	services := &Services{
		WordBook: service.NewWordBookService(st, nil, nil, validation.New(), logger),
		Tag:      service.NewTagService(st, nil, logger),
		Social:   service.NewSocialService(st, logger),
		Quiz:     quizService,
		Profile:  service.NewProfileService(st, nil, logger),
		Admin:    service.NewAdminService(st, backup.NewService(st, filepath.Join(tmpDir, "backups"), "test", logger), logger),
	}

	s := NewServer(st, services, verifier, logger, Options{})

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.api),
		verifier: verifier,
		quiz:     quizService,
	}
}

// seedUser creates a user and returns a bearer token for it.
func (ts *testServer) seedUser(t *testing.T, id, username string, role domain.Role) string {
	t.Helper()

	user := &domain.User{
		ID:        id,
		Username:  username,
		FirstName: username,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, ts.store.Users.Create(context.Background(), user.ID, user))

	return ts.verifier.Issue(user, time.Hour)
}

// seedWordBook creates a wordbook directly in the store.
func (ts *testServer) seedWordBook(t *testing.T, id, ownerID string, public bool) *domain.WordBook {
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
	require.NoError(t, ts.store.CreateWordBook(context.Background(), wb))
	return wb
}

// seedCard creates a card directly in the store.
func (ts *testServer) seedCard(t *testing.T, id, wordBookID, front, back string) *domain.WordCard {
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
	require.NoError(t, ts.store.CreateCard(context.Background(), card))
	return card
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()

	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}
