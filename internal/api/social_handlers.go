package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/wordbooks/{id}/like",
		Summary:     "Toggle like",
		Description: "Flips the caller's like on a wordbook",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/wordbooks/{id}/bookmark",
		Summary:     "Toggle bookmark",
		Description: "Flips the caller's bookmark on a wordbook",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCardStar",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/{id}/star",
		Summary:     "Toggle card star",
		Description: "Flips the caller's star on a card",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleCardStar)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/bookmarks",
		Summary:     "My bookmarks",
		Description: "Returns the caller's bookmarked wordbooks, newest first",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyStars",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/stars",
		Summary:     "My starred cards",
		Description: "Returns the caller's starred cards across all visible wordbooks",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyStars)
}

// === DTOs ===

// ToggleResponse reports the state after flipping a mark.
type ToggleResponse struct {
	Active bool `json:"active" doc:"Whether the mark is now set"`
	Count  int  `json:"count" doc:"Total marks on the target"`
}

// ToggleOutput wraps a toggle response for Huma.
type ToggleOutput struct {
	Body ToggleResponse
}

// ToggleInput contains parameters for flipping a mark.
type ToggleInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Target ID"`
}

func toggleResponse(state *service.ToggleState) ToggleResponse {
	return ToggleResponse{Active: state.Active, Count: state.Count}
}

// === Handlers ===

func (s *Server) handleToggleLike(ctx context.Context, input *ToggleInput) (*ToggleOutput, error) {
	return s.toggleWordBookMark(ctx, input, s.services.Social.ToggleLike)
}

func (s *Server) handleToggleBookmark(ctx context.Context, input *ToggleInput) (*ToggleOutput, error) {
	return s.toggleWordBookMark(ctx, input, s.services.Social.ToggleBookmark)
}

func (s *Server) toggleWordBookMark(ctx context.Context, input *ToggleInput, toggle func(context.Context, domain.Viewer, string) (*service.ToggleState, error)) (*ToggleOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	state, err := toggle(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: toggleResponse(state)}, nil
}

func (s *Server) handleToggleCardStar(ctx context.Context, input *ToggleInput) (*ToggleOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	state, err := s.services.Social.ToggleCardStar(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{Body: toggleResponse(state)}, nil
}

func (s *Server) handleListMyBookmarks(ctx context.Context, input *GetMyInput) (*WordBookListOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Social.ListBookmarkedWordBooks(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return &WordBookListOutput{Body: WordBookListResponse{
		WordBooks: wordBookResponses(books),
		Total:     len(books),
	}}, nil
}

func (s *Server) handleListMyStars(ctx context.Context, input *GetMyInput) (*CardListOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	cards, err := s.services.Social.ListStarredCards(ctx, viewer)
	if err != nil {
		return nil, err
	}

	resp := CardListResponse{Cards: make([]CardResponse, len(cards))}
	for i, card := range cards {
		resp.Cards[i] = cardResponse(card)
	}

	return &CardListOutput{Body: resp}, nil
}
