package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestUserString(t *testing.T) {
	u := &User{ID: 7, Username: "testuser", Email: "test@test.com"}
	require.Equal(t, "<User #7: testuser, test@test.com>", u.String())
}

func TestMessageString(t *testing.T) {
	m := &Message{ID: 3, UserID: 7}
	require.Equal(t, "<Message 3 user:7 >", m.String())
}

func TestApplyImageDefaults(t *testing.T) {
	u := &User{}
	u.ApplyImageDefaults()
	require.Equal(t, DefaultImageURL, u.ImageURL)
	require.Equal(t, DefaultHeaderImageURL, u.HeaderImageURL)

	custom := &User{ImageURL: "https://img/a.png", HeaderImageURL: "https://img/b.png"}
	custom.ApplyImageDefaults()
	require.Equal(t, "https://img/a.png", custom.ImageURL)
	require.Equal(t, "https://img/b.png", custom.HeaderImageURL)
}

func TestMessageBeforeCreateStampsTime(t *testing.T) {
	m := &Message{}
	require.NoError(t, m.BeforeCreate(nil))
	require.False(t, m.CreatedAt.IsZero())

	fixed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	kept := &Message{CreatedAt: fixed}
	require.NoError(t, kept.BeforeCreate(nil))
	require.Equal(t, fixed, kept.CreatedAt)
}

func TestUserJSONHidesPassword(t *testing.T) {
	raw, err := json.Marshal(&User{Username: "a", Password: "$2a$hash"})
	require.NoError(t, err)
	require.NotContains(t, string(raw), "hash")
	require.NotContains(t, string(raw), "password")
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewConflictError("taken", nil))
	require.True(t, HasCode(wrapped, CodeConflict))
	require.False(t, HasCode(wrapped, CodeNotFound))
	require.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("User", 1), fiber.StatusNotFound},
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewUnauthorizedError("no"), fiber.StatusForbidden},
		{NewConflictError("dup", nil), fiber.StatusConflict},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestRespondWithErrorHidesConflictCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusConflict,
			NewConflictError("Username or email already taken", errors.New("UNIQUE constraint failed: users.email")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "Username or email already taken", out.Error)
	require.Equal(t, CodeConflict, out.Code)
	require.Empty(t, out.Details)
}
