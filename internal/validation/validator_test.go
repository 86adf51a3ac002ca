package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/wordbookapp/wordbook-server/internal/errors"
)

type createWordBookInput struct {
	Title           string `json:"title" validate:"required,max=100"`
	Description     string `json:"description,omitempty" validate:"max=500"`
	BackgroundColor string `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(createWordBookInput{
		Title:           "TOEIC Vocabulary",
		BackgroundColor: "#FFF7DE",
	})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(createWordBookInput{
		Title:           "",
		BackgroundColor: "yellow",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeBadRequest, domainErr.Code)

	// Field names come from JSON tags, with options stripped.
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["title"])
	assert.Equal(t, "must be a hex color like #FFFFFF", details["background_color"])
}

func TestValidate_MaxLength(t *testing.T) {
	v := New()

	err := v.Validate(createWordBookInput{Title: strings.Repeat("a", 101)})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "must not exceed 100 characters", details["title"])
}

func TestVar(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("name", "oneof=name -name"))
	assert.Error(t, v.Var("created_at", "oneof=name -name"))
}
