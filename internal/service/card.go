package service

import (
	"context"
	"fmt"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/id"
	"github.com/wordbookapp/wordbook-server/internal/media/images"
)

// CardInput carries the caller-settable card fields, shared between
// create and update.
type CardInput struct {
	FrontText string `json:"front_text" validate:"required,max=200"`
	BackText  string `json:"back_text" validate:"required,max=500"`
}

// AddCard appends a card to a wordbook the viewer owns. Cards keep their
// insertion order, which is also the quiz question order.
func (s *WordBookService) AddCard(ctx context.Context, viewer domain.Viewer, wordBookID string, input CardInput) (*domain.WordCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	wb, err := ownedWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return nil, err
	}

	cardID, err := id.Generate("card")
	if err != nil {
		return nil, fmt.Errorf("generate card ID: %w", err)
	}

	card := &domain.WordCard{
		ID:         cardID,
		WordBookID: wb.ID,
		FrontText:  input.FrontText,
		BackText:   input.BackText,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.logger.Info("card created", "card_id", cardID, "wordbook_id", wb.ID)
	return card, nil
}

// ListCards returns the cards of a viewable wordbook in insertion order.
func (s *WordBookService) ListCards(ctx context.Context, viewer domain.Viewer, wordBookID string) ([]*domain.WordCard, error) {
	if _, err := viewableWordBook(ctx, s.store, viewer, wordBookID); err != nil {
		return nil, err
	}
	return s.store.ListCardsByWordBook(ctx, wordBookID)
}

// GetCard retrieves a card, gated by its wordbook's visibility.
func (s *WordBookService) GetCard(ctx context.Context, viewer domain.Viewer, cardID string) (*domain.WordCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, notFound(err, "card not found")
	}
	if _, err := viewableWordBook(ctx, s.store, viewer, card.WordBookID); err != nil {
		return nil, apperrors.NotFound("card not found")
	}
	return card, nil
}

// UpdateCard rewrites a card's texts. Owner or admin only.
func (s *WordBookService) UpdateCard(ctx context.Context, viewer domain.Viewer, cardID string, input CardInput) (*domain.WordCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	card, err := s.ownedCard(ctx, viewer, cardID)
	if err != nil {
		return nil, err
	}

	card.FrontText = input.FrontText
	card.BackText = input.BackText
	card.Touch()

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.logger.Info("card updated", "card_id", card.ID, "wordbook_id", card.WordBookID)
	return card, nil
}

// DeleteCard removes a card along with its stars and stored image.
func (s *WordBookService) DeleteCard(ctx context.Context, viewer domain.Viewer, cardID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	card, err := s.ownedCard(ctx, viewer, cardID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCard(ctx, card.ID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if s.images != nil && card.ImageURL != "" {
		if err := s.images.Delete(card.ID); err != nil {
			s.logger.Warn("delete card image failed", "card_id", card.ID, "error", err)
		}
	}

	s.logger.Info("card deleted", "card_id", card.ID, "wordbook_id", card.WordBookID)
	return nil
}

// AttachCardImage validates and stores an illustration for a card,
// recording its blurhash placeholder on the card.
func (s *WordBookService) AttachCardImage(ctx context.Context, viewer domain.Viewer, cardID string, data []byte) (*domain.WordCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperrors.Internal("image storage is not configured")
	}
	card, err := s.ownedCard(ctx, viewer, cardID)
	if err != nil {
		return nil, err
	}

	upload, err := images.ValidateUpload(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.images.Save(card.ID, upload); err != nil {
		return nil, fmt.Errorf("save card image: %w", err)
	}

	card.ImageURL = fmt.Sprintf("/api/cards/%s/image", card.ID)
	card.BlurHash = upload.BlurHash
	card.Touch()

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.logger.Info("card image attached",
		"card_id", card.ID,
		"format", upload.Format,
		"size", len(data),
	)
	return card, nil
}

// CardImage serves a card's stored image bytes with their content type,
// gated by the wordbook's visibility.
func (s *WordBookService) CardImage(ctx context.Context, viewer domain.Viewer, cardID string) ([]byte, string, error) {
	if s.images == nil {
		return nil, "", apperrors.NotFound("image not found")
	}
	card, err := s.GetCard(ctx, viewer, cardID)
	if err != nil {
		return nil, "", err
	}
	if card.ImageURL == "" {
		return nil, "", apperrors.NotFound("image not found")
	}
	data, format, err := s.images.Get(card.ID)
	if err != nil {
		return nil, "", apperrors.NotFound("image not found")
	}
	return data, images.ContentType(format), nil
}

// ownedCard loads a card and requires ownership of its wordbook.
func (s *WordBookService) ownedCard(ctx context.Context, viewer domain.Viewer, cardID string) (*domain.WordCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, notFound(err, "card not found")
	}
	if _, err := ownedWordBook(ctx, s.store, viewer, card.WordBookID); err != nil {
		return nil, err
	}
	return card, nil
}
