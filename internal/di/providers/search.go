package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/wordbookapp/wordbook-server/internal/config"
	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/logger"
	"github.com/wordbookapp/wordbook-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Storage.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index from the store when the
// index is empty but public wordbooks exist, which happens after the index
// mapping changes or the index directory is lost. Should be called after
// all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	books, _, err := storeHandle.ListWordBooks(ctx, func(wb *domain.WordBook) bool {
		return wb.IsPublic
	}, 0, 0)
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but public wordbooks exist, triggering reindex",
		"wordbook_count", len(books),
	)

	go func() {
		reindexCtx := context.Background()
		docs := make([]*search.Document, 0, len(books))
		for _, wb := range books {
			var ownerUsername string
			if owner, err := storeHandle.GetUser(reindexCtx, wb.OwnerID); err == nil {
				ownerUsername = owner.Username
			}
			tagNames := make([]string, 0, len(wb.TagIDs))
			for _, tagID := range wb.TagIDs {
				if tag, err := storeHandle.GetTag(reindexCtx, tagID); err == nil {
					tagNames = append(tagNames, tag.Name)
				}
			}
			docs = append(docs, search.NewDocument(wb, ownerUsername, tagNames))
		}

		if err := indexHandle.IndexDocuments(docs); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
