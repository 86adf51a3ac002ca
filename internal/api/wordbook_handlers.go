package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/search"
	"github.com/wordbookapp/wordbook-server/internal/service"
)

func (s *Server) registerWordBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listWordbooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/wordbooks",
		Summary:     "List wordbooks",
		Description: "Returns wordbooks visible to the caller, newest first",
		Tags:        []string{"Wordbooks"},
	}, s.handleListWordBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchWordbooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/wordbooks/search",
		Summary:     "Search wordbooks",
		Description: "Full-text search over public wordbooks",
		Tags:        []string{"Wordbooks"},
	}, s.handleSearchWordBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyWordbooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/wordbooks/mine",
		Summary:     "List my wordbooks",
		Description: "Returns every wordbook owned by the caller",
		Tags:        []string{"Wordbooks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyWordBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createWordbook",
		Method:      http.MethodPost,
		Path:        "/api/v1/wordbooks",
		Summary:     "Create wordbook",
		Description: "Creates a new wordbook owned by the caller",
		Tags:        []string{"Wordbooks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateWordBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWordbook",
		Method:      http.MethodGet,
		Path:        "/api/v1/wordbooks/{id}",
		Summary:     "Get wordbook",
		Description: "Returns a wordbook with counts and caller state",
		Tags:        []string{"Wordbooks"},
	}, s.handleGetWordBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateWordbook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/wordbooks/{id}",
		Summary:     "Update wordbook",
		Description: "Applies a partial update, owner or admin only",
		Tags:        []string{"Wordbooks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateWordBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteWordbook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/wordbooks/{id}",
		Summary:     "Delete wordbook",
		Description: "Deletes a wordbook and everything attached to it",
		Tags:        []string{"Wordbooks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteWordBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "setWordbookTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/wordbooks/{id}/tags",
		Summary:     "Set wordbook tags",
		Description: "Replaces the wordbook's tag set, owner only",
		Tags:        []string{"Wordbooks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetWordBookTags)
}

// === DTOs ===

// WordBookResponse contains wordbook data in API responses.
type WordBookResponse struct {
	ID              string    `json:"id" doc:"Wordbook ID"`
	OwnerID         string    `json:"owner_id" doc:"Owner user ID"`
	Title           string    `json:"title" doc:"Title"`
	Description     string    `json:"description,omitempty" doc:"Description"`
	TagIDs          []string  `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
	AvatarImageURL  string    `json:"avatar_image_url,omitempty" doc:"Cover image URL"`
	BackgroundColor string    `json:"background_color,omitempty" doc:"Display color"`
	IsAIGenerated   bool      `json:"is_ai_generated" doc:"Whether the book was AI generated"`
	IsPublic        bool      `json:"is_public" doc:"Whether the book is public"`
	IsPinned        bool      `json:"is_pinned" doc:"Whether the owner pinned the book"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

func wordBookResponse(wb *domain.WordBook) WordBookResponse {
	return WordBookResponse{
		ID:              wb.ID,
		OwnerID:         wb.OwnerID,
		Title:           wb.Title,
		Description:     wb.Description,
		TagIDs:          wb.TagIDs,
		AvatarImageURL:  wb.AvatarImageURL,
		BackgroundColor: wb.BackgroundColor,
		IsAIGenerated:   wb.IsAIGenerated,
		IsPublic:        wb.IsPublic,
		IsPinned:        wb.IsPinned,
		CreatedAt:       wb.CreatedAt,
		UpdatedAt:       wb.UpdatedAt,
	}
}

func wordBookResponses(books []*domain.WordBook) []WordBookResponse {
	resp := make([]WordBookResponse, len(books))
	for i, wb := range books {
		resp[i] = wordBookResponse(wb)
	}
	return resp
}

// WordBookListResponse contains a page of wordbooks.
type WordBookListResponse struct {
	WordBooks []WordBookResponse `json:"wordbooks" doc:"Page of wordbooks"`
	Total     int                `json:"total" doc:"Total matching wordbooks"`
}

// WordBookListOutput wraps the list response for Huma.
type WordBookListOutput struct {
	Body WordBookListResponse
}

// ListWordBooksInput contains parameters for listing wordbooks.
type ListWordBooksInput struct {
	Authorization string `header:"Authorization"`
	Order         string `query:"order" enum:"new,popular" default:"new" doc:"Ordering: newest first or by like count"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// SearchWordBooksInput contains full-text search parameters.
type SearchWordBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search terms"`
	Tag           string `query:"tag" doc:"Restrict to a tag name"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// CreateWordBookRequest is the request body for creating a wordbook.
type CreateWordBookRequest struct {
	Title           string `json:"title" doc:"Title"`
	Description     string `json:"description,omitempty" doc:"Description"`
	IsPublic        bool   `json:"is_public,omitempty" doc:"Publish immediately"`
	BackgroundColor string `json:"background_color,omitempty" doc:"Display color"`
}

// CreateWordBookInput wraps the create request for Huma.
type CreateWordBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateWordBookRequest
}

// WordBookOutput wraps a single wordbook response for Huma.
type WordBookOutput struct {
	Body WordBookResponse
}

// GetWordBookInput contains parameters for fetching a wordbook.
type GetWordBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
}

// WordBookDetailResponse is a wordbook with derived display state.
type WordBookDetailResponse struct {
	WordBookResponse
	OwnerUsername string        `json:"owner_username,omitempty" doc:"Owner's username"`
	Tags          []TagResponse `json:"tags,omitempty" doc:"Attached tags"`
	CardCount     int           `json:"card_count" doc:"Number of cards"`
	LikeCount     int           `json:"like_count" doc:"Number of likes"`
	BookmarkCount int           `json:"bookmark_count" doc:"Number of bookmarks"`
	Liked         bool          `json:"liked" doc:"Whether the caller liked the book"`
	Bookmarked    bool          `json:"bookmarked" doc:"Whether the caller bookmarked the book"`
}

// WordBookDetailOutput wraps the detail response for Huma.
type WordBookDetailOutput struct {
	Body WordBookDetailResponse
}

// UpdateWordBookRequest is the request body for a partial update.
type UpdateWordBookRequest struct {
	Title           *string `json:"title,omitempty" doc:"Title"`
	Description     *string `json:"description,omitempty" doc:"Description"`
	IsPublic        *bool   `json:"is_public,omitempty" doc:"Visibility flag"`
	IsPinned        *bool   `json:"is_pinned,omitempty" doc:"Pin flag"`
	BackgroundColor *string `json:"background_color,omitempty" doc:"Display color"`
}

// UpdateWordBookInput wraps the update request for Huma.
type UpdateWordBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
	Body          UpdateWordBookRequest
}

// DeleteWordBookInput contains parameters for deleting a wordbook.
type DeleteWordBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
}

// SetWordBookTagsRequest is the request body for replacing a tag set.
type SetWordBookTagsRequest struct {
	TagIDs   []string `json:"tag_ids,omitempty" doc:"Tags referenced by ID"`
	TagSlugs []string `json:"tag_slugs,omitempty" doc:"Tags referenced by slug"`
}

// SetWordBookTagsInput wraps the tag set request for Huma.
type SetWordBookTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
	Body          SetWordBookTagsRequest
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a confirmation for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListWordBooks(ctx context.Context, input *ListWordBooksInput) (*WordBookListOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, total, err := s.services.WordBook.ListWordBooks(ctx, viewer, service.ListOrder(input.Order), input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &WordBookListOutput{Body: WordBookListResponse{
		WordBooks: wordBookResponses(books),
		Total:     total,
	}}, nil
}

func (s *Server) handleSearchWordBooks(ctx context.Context, input *SearchWordBooksInput) (*WordBookListOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, total, err := s.services.WordBook.SearchWordBooks(ctx, viewer, search.Params{
		Query:  input.Query,
		Tag:    input.Tag,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &WordBookListOutput{Body: WordBookListResponse{
		WordBooks: wordBookResponses(books),
		Total:     total,
	}}, nil
}

func (s *Server) handleListMyWordBooks(ctx context.Context, input *GetMyInput) (*WordBookListOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.WordBook.ListMyWordBooks(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return &WordBookListOutput{Body: WordBookListResponse{
		WordBooks: wordBookResponses(books),
		Total:     len(books),
	}}, nil
}

func (s *Server) handleCreateWordBook(ctx context.Context, input *CreateWordBookInput) (*WordBookOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	wb, err := s.services.WordBook.CreateWordBook(ctx, viewer, service.CreateWordBookInput{
		Title:           input.Body.Title,
		Description:     input.Body.Description,
		IsPublic:        input.Body.IsPublic,
		BackgroundColor: input.Body.BackgroundColor,
	})
	if err != nil {
		return nil, err
	}

	return &WordBookOutput{Body: wordBookResponse(wb)}, nil
}

func (s *Server) handleGetWordBook(ctx context.Context, input *GetWordBookInput) (*WordBookDetailOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.WordBook.GetWordBook(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	resp := WordBookDetailResponse{
		WordBookResponse: wordBookResponse(detail.WordBook),
		OwnerUsername:    detail.OwnerUsername,
		CardCount:        detail.CardCount,
		LikeCount:        detail.LikeCount,
		BookmarkCount:    detail.BookmarkCount,
		Liked:            detail.Liked,
		Bookmarked:       detail.Bookmarked,
	}
	for _, tag := range detail.Tags {
		resp.Tags = append(resp.Tags, tagResponse(&tag))
	}

	return &WordBookDetailOutput{Body: resp}, nil
}

func (s *Server) handleUpdateWordBook(ctx context.Context, input *UpdateWordBookInput) (*WordBookOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	wb, err := s.services.WordBook.UpdateWordBook(ctx, viewer, input.ID, service.UpdateWordBookInput{
		Title:           input.Body.Title,
		Description:     input.Body.Description,
		IsPublic:        input.Body.IsPublic,
		IsPinned:        input.Body.IsPinned,
		BackgroundColor: input.Body.BackgroundColor,
	})
	if err != nil {
		return nil, err
	}

	return &WordBookOutput{Body: wordBookResponse(wb)}, nil
}

func (s *Server) handleDeleteWordBook(ctx context.Context, input *DeleteWordBookInput) (*MessageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.WordBook.DeleteWordBook(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "wordbook deleted"}}, nil
}

func (s *Server) handleSetWordBookTags(ctx context.Context, input *SetWordBookTagsInput) (*WordBookOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	wb, err := s.services.Tag.SetWordBookTags(ctx, viewer, input.ID, input.Body.TagIDs, input.Body.TagSlugs)
	if err != nil {
		return nil, err
	}

	return &WordBookOutput{Body: wordBookResponse(wb)}, nil
}
