package domain

import (
	"slices"
	"time"
)

// AvatarKind discriminates the avatar union.
type AvatarKind string

const (
	// AvatarNone means no avatar has been chosen yet.
	AvatarNone AvatarKind = ""
	// AvatarPreset is one of the built-in avatar images.
	AvatarPreset AvatarKind = "preset"
	// AvatarCustom is a user-uploaded image.
	AvatarCustom AvatarKind = "custom"
)

// PresetAvatars are the built-in avatar image filenames.
var PresetAvatars = []string{
	"bear.png",
	"cat.png",
	"fox.png",
	"owl.png",
	"panda.png",
	"penguin.png",
	"rabbit.png",
}

// BackgroundColors are the selectable profile background presets.
var BackgroundColors = []string{
	"#FFFFFF",
	"#FFF7DE",
	"#FFE4E1",
	"#E6F7FF",
	"#E8F5E9",
	"#F0E6FF",
}

// DefaultBackgroundColor is applied when a profile is lazily created.
const DefaultBackgroundColor = "#FFFFFF"

// ValidPresetAvatar checks a preset filename against the built-in set.
func ValidPresetAvatar(name string) bool {
	return slices.Contains(PresetAvatars, name)
}

// ValidBackgroundColor checks a hex value against the preset palette.
func ValidBackgroundColor(hex string) bool {
	return slices.Contains(BackgroundColors, hex)
}

// Avatar is a tagged union: either a preset filename or a custom upload URL,
// never both. Use SetPreset / SetCustom to keep the invariant.
type Avatar struct {
	Kind      AvatarKind `json:"kind"`
	Preset    string     `json:"preset,omitempty"`
	CustomURL string     `json:"custom_url,omitempty"`
}

// SetPreset selects a built-in avatar, clearing any custom upload.
func (a *Avatar) SetPreset(name string) {
	a.Kind = AvatarPreset
	a.Preset = name
	a.CustomURL = ""
}

// SetCustom selects an uploaded avatar, clearing any preset selection.
func (a *Avatar) SetCustom(url string) {
	a.Kind = AvatarCustom
	a.CustomURL = url
	a.Preset = ""
}

// UserProfile holds per-user presentation preferences.
// One-to-one with a user account; lazily created on first access.
type UserProfile struct {
	UserID          string    `json:"user_id"`
	Avatar          Avatar    `json:"avatar"`
	BackgroundColor string    `json:"background_color"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUserProfile returns the default profile created on first access.
func NewUserProfile(userID string) *UserProfile {
	now := time.Now()
	return &UserProfile{
		UserID:          userID,
		BackgroundColor: DefaultBackgroundColor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (p *UserProfile) Touch() {
	p.UpdatedAt = time.Now()
}
