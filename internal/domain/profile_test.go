package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvatar_MutualExclusivity(t *testing.T) {
	var a Avatar
	assert.Equal(t, AvatarNone, a.Kind)

	a.SetPreset("cat.png")
	assert.Equal(t, AvatarPreset, a.Kind)
	assert.Equal(t, "cat.png", a.Preset)
	assert.Empty(t, a.CustomURL)

	a.SetCustom("/media/avatars/user-1.jpg")
	assert.Equal(t, AvatarCustom, a.Kind)
	assert.Equal(t, "/media/avatars/user-1.jpg", a.CustomURL)
	assert.Empty(t, a.Preset, "setting a custom upload clears the preset")

	a.SetPreset("fox.png")
	assert.Empty(t, a.CustomURL, "setting a preset clears the custom upload")
}

func TestValidPresetAvatar(t *testing.T) {
	assert.True(t, ValidPresetAvatar("penguin.png"))
	assert.False(t, ValidPresetAvatar("dragon.png"))
	assert.False(t, ValidPresetAvatar(""))
}

func TestValidBackgroundColor(t *testing.T) {
	assert.True(t, ValidBackgroundColor("#FFF7DE"))
	assert.False(t, ValidBackgroundColor("#123456"))
	assert.False(t, ValidBackgroundColor("red"))
}

func TestNewUserProfile_Defaults(t *testing.T) {
	p := NewUserProfile("user-1")

	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, DefaultBackgroundColor, p.BackgroundColor)
	assert.Equal(t, AvatarNone, p.Avatar.Kind)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestUser_DisplayName(t *testing.T) {
	withFirst := &User{Username: "taro123", FirstName: "Taro"}
	assert.Equal(t, "Taro", withFirst.DisplayName())

	withoutFirst := &User{Username: "taro123"}
	assert.Equal(t, "taro123", withoutFirst.DisplayName())
}
