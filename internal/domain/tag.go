package domain

import "time"

// Tag limits.
const (
	// MaxTagNameLength caps the normalized tag name.
	MaxTagNameLength = 50
	// MaxTagsPerWordBook caps combined tag references on one wordbook.
	MaxTagsPerWordBook = 10
)

// Tag is a shared label applied to wordbooks. The slug is the dedup key:
// create with a name that slugifies to an existing slug returns the
// existing tag unchanged, regardless of who asked.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// CreatorID records who first created the tag; only the creator may
	// delete it. Empty for seeded tags.
	CreatorID string `json:"creator_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// TagOrder is the sort direction for tag listings.
type TagOrder string

const (
	// TagOrderNameAsc sorts by name ascending.
	TagOrderNameAsc TagOrder = "name"
	// TagOrderNameDesc sorts by name descending.
	TagOrderNameDesc TagOrder = "-name"
)

// Valid checks if the order is one of the supported values.
func (o TagOrder) Valid() bool {
	return o == TagOrderNameAsc || o == TagOrderNameDesc
}

// TagUsage pairs a tag with its attached-wordbook count, for popular-tag
// displays.
type TagUsage struct {
	Tag   *Tag `json:"tag"`
	Count int  `json:"count"`
}
