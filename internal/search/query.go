package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // free-text query over title and description
	Tag   string // exact tag name filter, optional

	Limit  int
	Offset int
}

// Result is one page of matches.
type Result struct {
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is a single matched wordbook. The caller loads the full record from
// the store; the index only hands back identity and score.
type Hit struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Search executes a query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildQuery(params)
	request := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	request.Fields = []string{"title"}

	result, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		hits = append(hits, h)
	}

	return &Result{
		Total: result.Total,
		Hits:  hits,
	}, nil
}

func buildQuery(params Params) query.Query {
	var parts []query.Query

	text := strings.TrimSpace(params.Query)
	if text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(2.0)

		descMatch := bleve.NewMatchQuery(text)
		descMatch.SetField("description")

		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")

		parts = append(parts, bleve.NewDisjunctionQuery(titleMatch, descMatch, prefix))
	}

	if params.Tag != "" {
		tagQuery := bleve.NewTermQuery(params.Tag)
		tagQuery.SetField("tags")
		parts = append(parts, tagQuery)
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return parts[0]
	default:
		return bleve.NewConjunctionQuery(parts...)
	}
}
