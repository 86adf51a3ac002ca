package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/http/response"
	"github.com/wordbookapp/wordbook-server/internal/service"
)

func (s *Server) registerCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listWordbookCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/wordbooks/{id}/cards",
		Summary:     "List cards",
		Description: "Returns the cards of a wordbook in insertion order",
		Tags:        []string{"Cards"},
	}, s.handleListCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/wordbooks/{id}/cards",
		Summary:     "Add card",
		Description: "Appends a card to a wordbook, owner only",
		Tags:        []string{"Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Get card",
		Description: "Returns a card by ID",
		Tags:        []string{"Cards"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCard",
		Method:      http.MethodPatch,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Update card",
		Description: "Rewrites a card's texts, owner only",
		Tags:        []string{"Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCard",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Delete card",
		Description: "Deletes a card, owner only",
		Tags:        []string{"Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadCardImage",
		Method:      http.MethodPut,
		Path:        "/api/v1/cards/{id}/image",
		Summary:     "Upload card image",
		Description: "Attaches an illustration to a card, owner only",
		Tags:        []string{"Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadCardImage)
}

// === DTOs ===

// CardResponse contains card data in API responses.
type CardResponse struct {
	ID         string    `json:"id" doc:"Card ID"`
	WordBookID string    `json:"wordbook_id" doc:"Owning wordbook ID"`
	FrontText  string    `json:"front_text" doc:"Front text (the word)"`
	BackText   string    `json:"back_text" doc:"Back text (the meaning)"`
	ImageURL   string    `json:"image_url,omitempty" doc:"Illustration URL"`
	BlurHash   string    `json:"blur_hash,omitempty" doc:"BlurHash placeholder"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time `json:"updated_at" doc:"Last update time"`
}

func cardResponse(card *domain.WordCard) CardResponse {
	return CardResponse{
		ID:         card.ID,
		WordBookID: card.WordBookID,
		FrontText:  card.FrontText,
		BackText:   card.BackText,
		ImageURL:   card.ImageURL,
		BlurHash:   card.BlurHash,
		CreatedAt:  card.CreatedAt,
		UpdatedAt:  card.UpdatedAt,
	}
}

// CardListResponse contains the cards of one wordbook.
type CardListResponse struct {
	Cards   []CardResponse  `json:"cards" doc:"Cards in insertion order"`
	Starred map[string]bool `json:"starred,omitempty" doc:"Caller's starred card IDs"`
}

// CardListOutput wraps the card list for Huma.
type CardListOutput struct {
	Body CardListResponse
}

// ListCardsInput contains parameters for listing cards.
type ListCardsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
}

// CardRequest is the request body shared by card create and update.
type CardRequest struct {
	FrontText string `json:"front_text" doc:"Front text (the word)"`
	BackText  string `json:"back_text" doc:"Back text (the meaning)"`
}

// AddCardInput wraps the card create request for Huma.
type AddCardInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
	Body          CardRequest
}

// CardOutput wraps a single card response for Huma.
type CardOutput struct {
	Body CardResponse
}

// GetCardInput contains parameters for fetching a card.
type GetCardInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Card ID"`
}

// UpdateCardInput wraps the card update request for Huma.
type UpdateCardInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Card ID"`
	Body          CardRequest
}

// UploadCardImageInput carries the raw image bytes.
type UploadCardImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Card ID"`
	RawBody       []byte
}

// === Handlers ===

func (s *Server) handleListCards(ctx context.Context, input *ListCardsInput) (*CardListOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	cards, err := s.services.WordBook.ListCards(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	resp := CardListResponse{Cards: make([]CardResponse, len(cards))}
	for i, card := range cards {
		resp.Cards[i] = cardResponse(card)
	}
	if viewer.Authenticated {
		starred, err := s.services.Social.StarredCardIDs(ctx, viewer, input.ID)
		if err != nil {
			return nil, err
		}
		resp.Starred = starred
	}

	return &CardListOutput{Body: resp}, nil
}

func (s *Server) handleAddCard(ctx context.Context, input *AddCardInput) (*CardOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.WordBook.AddCard(ctx, viewer, input.ID, service.CardInput{
		FrontText: input.Body.FrontText,
		BackText:  input.Body.BackText,
	})
	if err != nil {
		return nil, err
	}

	return &CardOutput{Body: cardResponse(card)}, nil
}

func (s *Server) handleGetCard(ctx context.Context, input *GetCardInput) (*CardOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.WordBook.GetCard(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &CardOutput{Body: cardResponse(card)}, nil
}

func (s *Server) handleUpdateCard(ctx context.Context, input *UpdateCardInput) (*CardOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.WordBook.UpdateCard(ctx, viewer, input.ID, service.CardInput{
		FrontText: input.Body.FrontText,
		BackText:  input.Body.BackText,
	})
	if err != nil {
		return nil, err
	}

	return &CardOutput{Body: cardResponse(card)}, nil
}

func (s *Server) handleDeleteCard(ctx context.Context, input *GetCardInput) (*MessageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.WordBook.DeleteCard(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "card deleted"}}, nil
}

func (s *Server) handleUploadCardImage(ctx context.Context, input *UploadCardImageInput) (*CardOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.WordBook.AttachCardImage(ctx, viewer, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &CardOutput{Body: cardResponse(card)}, nil
}

// handleCardImage serves the stored image bytes directly.
func (s *Server) handleCardImage(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		response.Fail(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", s.logger)
		return
	}

	data, contentType, err := s.services.WordBook.CardImage(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Image not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
