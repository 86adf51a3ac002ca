package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns tags with optional substring filtering and ordering",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a tag, or returns the existing one with the same slug",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "popularTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/popular",
		Summary:     "Popular tags",
		Description: "Returns tags ranked by number of wordbooks using them",
		Tags:        []string{"Tags"},
	}, s.handlePopularTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes an unused tag, creator or admin only",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTagWordbooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}/wordbooks",
		Summary:     "Wordbooks by tag",
		Description: "Returns visible wordbooks carrying a tag, newest first",
		Tags:        []string{"Tags"},
	}, s.handleListTagWordBooks)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Display name"`
	Slug      string    `json:"slug" doc:"URL-safe identifier"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func tagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		Slug:      tag.Slug,
		CreatedAt: tag.CreatedAt,
	}
}

// ListTagsInput contains query parameters for listing tags.
type ListTagsInput struct {
	Search string `query:"search" doc:"Substring filter on tag names"`
	Order  string `query:"order" enum:"name,-name" doc:"Sort order"`
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"50" doc:"Page size"`
	Offset int    `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// TagListResponse contains a page of tags.
type TagListResponse struct {
	Tags  []TagResponse `json:"tags" doc:"Tags in the requested order"`
	Total int           `json:"total" doc:"Total matching tags"`
}

// TagListOutput wraps the tag list for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// CreateTagRequest is the tag creation request body.
type CreateTagRequest struct {
	Name string `json:"name" doc:"Raw tag name, normalized server-side"`
}

// CreateTagInput wraps the tag creation request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateTagRequest
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// PopularTagsInput contains the result cap for the popular tag ranking.
type PopularTagsInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Number of tags"`
}

// TagUsageResponse pairs a tag with its usage count.
type TagUsageResponse struct {
	Tag   TagResponse `json:"tag" doc:"The tag"`
	Count int         `json:"count" doc:"Wordbooks using the tag"`
}

// PopularTagsOutput wraps the popular tag ranking for Huma.
type PopularTagsOutput struct {
	Body struct {
		Tags []TagUsageResponse `json:"tags" doc:"Tags ranked by usage, most used first"`
	}
}

// GetTagInput contains parameters for fetching a tag.
type GetTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// TagWordBooksInput contains parameters for listing a tag's wordbooks.
type TagWordBooksInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*TagListOutput, error) {
	tags, total, err := s.services.Tag.ListTags(ctx, service.ListTagsInput{
		Search: input.Search,
		Order:  domain.TagOrder(input.Order),
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := TagListResponse{Tags: make([]TagResponse, len(tags)), Total: total}
	for i := range tags {
		resp.Tags[i] = tagResponse(&tags[i])
	}

	return &TagListOutput{Body: resp}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, _, err := s.services.Tag.CreateTag(ctx, viewer, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: tagResponse(tag)}, nil
}

func (s *Server) handlePopularTags(ctx context.Context, input *PopularTagsInput) (*PopularTagsOutput, error) {
	usages, err := s.services.Tag.PopularTags(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &PopularTagsOutput{}
	out.Body.Tags = make([]TagUsageResponse, len(usages))
	for i, usage := range usages {
		out.Body.Tags[i] = TagUsageResponse{Tag: tagResponse(usage.Tag), Count: usage.Count}
	}

	return out, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	tag, err := s.services.Tag.GetTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: tagResponse(tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "tag deleted"}}, nil
}

func (s *Server) handleListTagWordBooks(ctx context.Context, input *TagWordBooksInput) (*WordBookListOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Tag.ListWordBooksByTag(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &WordBookListOutput{Body: WordBookListResponse{
		WordBooks: wordBookResponses(books),
		Total:     len(books),
	}}, nil
}
