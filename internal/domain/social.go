package domain

import "time"

// MarkKind discriminates the three toggleable (user, target) associations.
type MarkKind string

const (
	// MarkLike is a like on a wordbook.
	MarkLike MarkKind = "like"
	// MarkBookmark is a bookmark on a wordbook.
	MarkBookmark MarkKind = "bookmark"
	// MarkCardStar is a star on an individual card.
	MarkCardStar MarkKind = "star"
)

// Valid checks if the kind is one of the supported values.
func (k MarkKind) Valid() bool {
	switch k {
	case MarkLike, MarkBookmark, MarkCardStar:
		return true
	default:
		return false
	}
}

// Mark is a single (user, target) association row. At most one row exists
// per (kind, user, target) triple — the storage key is the uniqueness
// constraint. Toggling on creates the row, toggling off deletes it; there
// is no soft delete.
type Mark struct {
	Kind      MarkKind  `json:"kind"`
	UserID    string    `json:"user_id"`
	TargetID  string    `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
}
