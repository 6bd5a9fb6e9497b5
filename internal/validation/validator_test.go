package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/secondbrain/secondbrain/internal/errors"
	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/validation"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=16"`
	Title    string `json:"title,omitempty" validate:"notblank"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(signupRequest{Email: "a@example.com", Password: "secret", Title: "x"})
	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       signupRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing email",
			req:       signupRequest{Password: "secret", Title: "x"},
			wantField: "email",
			wantMsg:   "is required",
		},
		{
			name:      "invalid email",
			req:       signupRequest{Email: "nope", Password: "secret", Title: "x"},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
		{
			name:      "password too long",
			req:       signupRequest{Email: "a@example.com", Password: "0123456789abcdefg", Title: "x"},
			wantField: "password",
			wantMsg:   "must not exceed 16 characters",
		},
		{
			name:      "blank title",
			req:       signupRequest{Email: "a@example.com", Password: "secret", Title: "   "},
			wantField: "title",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

type taskPatch struct {
	Title       *string                `json:"title" validate:"omitnil,text"`
	Description model.Optional[string] `json:"description" validate:"text"`
}

func TestValidator_Text(t *testing.T) {
	v := validation.New()
	str := func(s string) *string { return &s }

	valid := []taskPatch{
		{},
		{Title: str("Snowman \u2603")},
		{Description: model.Some("café")},
		{Description: model.Null[string]()},
	}
	for _, p := range valid {
		assert.NoError(t, v.Validate(p))
	}

	tests := []struct {
		name      string
		patch     taskPatch
		wantField string
	}{
		{"nul in pointer", taskPatch{Title: str("a\x00b")}, "title"},
		{"invalid utf-8 in pointer", taskPatch{Title: str("\xff")}, "title"},
		{"nul in optional", taskPatch{Description: model.Some("\x00")}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.patch)
			require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, "must be valid UTF-8 without NUL characters", details[tt.wantField])
		})
	}
}

func TestIsText(t *testing.T) {
	assert.True(t, validation.IsText(""))
	assert.True(t, validation.IsText("milk, eggs"))
	assert.False(t, validation.IsText("\x00"))
	assert.False(t, validation.IsText("abc\xc3"))
}
