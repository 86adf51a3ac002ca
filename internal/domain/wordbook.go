package domain

import "time"

// WordBook is a user-owned vocabulary collection.
// Deleting the owner cascades to the wordbook and its cards; tags survive
// with the association removed.
type WordBook struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Tag associations, capped at MaxTagsPerWordBook. Replace-set semantics:
	// the slice is always written whole, never appended to incrementally.
	TagIDs []string `json:"tag_ids,omitempty"`

	// Optional presentation overrides.
	AvatarImageURL  string `json:"avatar_image_url,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`

	IsAIGenerated bool `json:"is_ai_generated"`
	IsPublic      bool `json:"is_public"`
	IsPinned      bool `json:"is_pinned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (w *WordBook) Touch() {
	w.UpdatedAt = time.Now()
}

// WordCard is a single front/back card inside a wordbook.
// Cards keep their insertion order; the quiz walks them in that order.
type WordCard struct {
	ID         string `json:"id"`
	WordBookID string `json:"wordbook_id"`
	FrontText  string `json:"front_text"`
	BackText   string `json:"back_text"`

	// Optional illustration, stored in the image storage.
	ImageURL string `json:"image_url,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *WordCard) Touch() {
	c.UpdatedAt = time.Now()
}
