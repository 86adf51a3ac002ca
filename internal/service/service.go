// Package service implements the application operations on top of the
// store: visibility and ownership enforcement, tag normalization, quiz
// orchestration, and profile management.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/search"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// notFound converts a store miss into a domain NotFound error, leaving
// every other error untouched for the transport layer to classify.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(msg)
	}
	return err
}

// requireViewer rejects anonymous callers.
func requireViewer(viewer domain.Viewer) error {
	if !viewer.Authenticated {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

// viewableWordBook loads a wordbook and applies the visibility policy.
// Out-of-scope books surface as NotFound so private collections do not
// leak their existence.
func viewableWordBook(ctx context.Context, st *store.Store, viewer domain.Viewer, id string) (*domain.WordBook, error) {
	wb, err := st.GetWordBook(ctx, id)
	if err != nil {
		return nil, notFound(err, "wordbook not found")
	}
	if !domain.CanView(wb, viewer) {
		return nil, apperrors.NotFound("wordbook not found")
	}
	return wb, nil
}

// ownedWordBook loads a wordbook and requires the viewer to be its owner
// or an admin. Books the viewer cannot even see stay NotFound; visible
// books owned by someone else are Forbidden.
func ownedWordBook(ctx context.Context, st *store.Store, viewer domain.Viewer, id string) (*domain.WordBook, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	wb, err := viewableWordBook(ctx, st, viewer, id)
	if err != nil {
		return nil, err
	}
	if wb.OwnerID != viewer.ID && !viewer.IsAdmin() {
		return nil, apperrors.Forbidden("not the wordbook owner")
	}
	return wb, nil
}

// loadViewableWordBooks resolves a list of wordbook ids to the books the
// viewer may see, silently dropping vanished and out-of-scope entries.
func loadViewableWordBooks(ctx context.Context, st *store.Store, viewer domain.Viewer, ids []string) ([]*domain.WordBook, error) {
	books := make([]*domain.WordBook, 0, len(ids))
	for _, id := range ids {
		wb, err := st.GetWordBook(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if domain.CanView(wb, viewer) {
			books = append(books, wb)
		}
	}
	return books, nil
}

// syncSearchDocument keeps the search index aligned with a wordbook's
// current state. Only public books are indexed; flipping a book private
// removes its document. Index failures are logged, never surfaced, so a
// degraded index cannot break writes.
func syncSearchDocument(ctx context.Context, st *store.Store, idx *search.Index, logger *slog.Logger, wb *domain.WordBook) {
	if idx == nil {
		return
	}
	if !wb.IsPublic {
		if err := idx.DeleteDocument(wb.ID); err != nil {
			logger.Warn("search deindex failed", "wordbook_id", wb.ID, "error", err)
		}
		return
	}

	var ownerUsername string
	if owner, err := st.GetUser(ctx, wb.OwnerID); err == nil {
		ownerUsername = owner.Username
	}
	tagNames := make([]string, 0, len(wb.TagIDs))
	for _, tagID := range wb.TagIDs {
		tag, err := st.GetTag(ctx, tagID)
		if err != nil {
			continue
		}
		tagNames = append(tagNames, tag.Name)
	}

	if err := idx.IndexDocument(search.NewDocument(wb, ownerUsername, tagNames)); err != nil {
		logger.Warn("search index failed", "wordbook_id", wb.ID, "error", err)
	}
}

// dropSearchDocument removes a deleted wordbook from the search index.
func dropSearchDocument(idx *search.Index, logger *slog.Logger, wordBookID string) {
	if idx == nil {
		return
	}
	if err := idx.DeleteDocument(wordBookID); err != nil {
		logger.Warn("search deindex failed", "wordbook_id", wordBookID, "error", err)
	}
}
