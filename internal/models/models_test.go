package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"birth_date":"1990-04-12"}`), &p))
	require.NotNil(t, p.BirthDate)
	assert.Equal(t, 1990, p.BirthDate.Year())
	assert.Equal(t, time.April, p.BirthDate.Month())

	out, err := json.Marshal(p.BirthDate)
	require.NoError(t, err)
	assert.Equal(t, `"1990-04-12"`, string(out))
}

func TestDate_RejectsOtherLayouts(t *testing.T) {
	t.Parallel()

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"12/04/1990"`), &d))
	_, err := ParseDate("1990-13-01")
	assert.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"time", time.Date(2001, 2, 3, 15, 4, 5, 0, time.UTC), "2001-02-03"},
		{"string", "2001-02-03", "2001-02-03"},
		{"datetime string", "2001-02-03 00:00:00+00:00", "2001-02-03"},
		{"bytes", []byte("2001-02-03"), "2001-02-03"},
	}
	for _, tt := range tests {
		var d Date
		require.NoError(t, d.Scan(tt.value), tt.name)
		assert.Equal(t, tt.want, d.String(), tt.name)
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestNewPostPage(t *testing.T) {
	t.Parallel()

	page := NewPostPage(nil, 21, 2, 10)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.NotNil(t, page.Posts)

	empty := NewPostPage(nil, 0, 1, 10)
	assert.Equal(t, 0, empty.Pages)
}

func TestUser_PublicHidesPrivateFields(t *testing.T) {
	t.Parallel()

	u := &User{
		ID:       1,
		Username: "aura",
		Email:    "aura@example.com",
		IsAdmin:  true,
		Profile:  &UserProfile{FullName: "Aura", AvatarData: []byte{1, 2, 3}},
	}
	pub := u.Public()

	assert.Empty(t, pub.Email)
	assert.False(t, pub.IsAdmin)
	assert.Nil(t, pub.Profile.AvatarData)
	assert.Equal(t, "aura@example.com", u.Email, "original must be untouched")
	assert.Len(t, u.Profile.AvatarData, 3)
	assert.Equal(t, "Aura", pub.DisplayName())
	assert.Equal(t, "bob", (&User{Username: "bob"}).DisplayName())
}

func TestProfile_Settings(t *testing.T) {
	t.Parallel()

	var missing *UserProfile
	assert.Equal(t, DefaultSettings(), missing.Settings())

	p := NewDefaultProfile(7, "Seven")
	p.ThemePreference = ThemeDark
	s := p.Settings()
	assert.Equal(t, ThemeDark, s.Theme)
	assert.Equal(t, "en", s.Language)
	assert.True(t, s.EmailNotifications)
	assert.Equal(t, VisibilityPublic, s.ProfileVisibility)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, StatusFor(NewNotFoundError("Post", 1)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(NewValidationError("bad")))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(NewUnauthorizedError("no")))
	assert.Equal(t, http.StatusForbidden, StatusFor(NewForbiddenError("no")))
	assert.Equal(t, http.StatusConflict, StatusFor(NewConflictError("dup")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
	assert.Equal(t, http.StatusConflict, StatusFor(fmt.Errorf("wrapped: %w", NewConflictError("dup"))))
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("pq: secret")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("driver exploded"))
	})

	for _, path := range []string{"/internal", "/plain"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body.Error)
		assert.Empty(t, body.Details)
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "User not found", NewNotFoundError("User", nil).Message)
	assert.Equal(t, "Post with ID 4 not found", NewNotFoundError("Post", 4).Message)
}

func TestUserProfile_AvatarURL(t *testing.T) {
	p := &UserProfile{UserID: 12}
	require.NoError(t, p.AfterFind(nil))
	assert.False(t, p.HasAvatar())
	assert.Empty(t, p.AvatarURL)

	p.AvatarMimeType = "image/jpeg"
	require.NoError(t, p.AfterFind(nil))
	assert.True(t, p.HasAvatar())
	assert.Equal(t, "/api/profile/avatar/12", p.AvatarURL)

	var missing *UserProfile
	assert.False(t, missing.HasAvatar())
}
