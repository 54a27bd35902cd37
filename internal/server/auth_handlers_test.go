package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	token, user := env.signup(t, "testuser")
	assert.NotEmpty(t, token)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.DefaultImageURL, user.ImageURL)
	assert.Empty(t, user.Password, "password hash must never be serialized")
}

func TestSignup_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "testuser")

	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "testuser",
		"email":    "another@test.com",
		"password": "password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, decodeError(t, resp).Code)
}

func TestSignup_Invalid(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "testuser",
		"email":    "not-an-email",
		"password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "testuser")

	t.Run("wrong password", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "testuser", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials.", decodeError(t, resp).Error)
	})

	t.Run("unknown user looks the same", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "ghost", "password": "password",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials.", decodeError(t, resp).Error)
	})

	t.Run("success sets cookie", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "testuser", "password": "password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var found bool
		for _, ck := range resp.Cookies() {
			if ck.Name == SessionCookie {
				found = true
				assert.NotEmpty(t, ck.Value)
				assert.True(t, ck.HttpOnly)
			}
		}
		assert.True(t, found)
	})
}

func TestLogout_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.signup(t, "testuser")

	resp := env.do(t, http.MethodGet, userPath(user.ID, "following"), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, userPath(user.ID, "following"), token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access unauthorized.", decodeError(t, resp).Error)
}

func TestCookieSession(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.signup(t, "testuser")

	req := httptest.NewRequest(http.MethodGet, userPath(user.ID, "followers"), nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGarbageTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/home", "garbage", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []models.Message
	decode(t, resp, &msgs)
	assert.Empty(t, msgs)
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 2 })

	body := map[string]string{"username": "x", "password": "y"}
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", body).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", body).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/auth/login", "", body).StatusCode)

	env.mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", body).StatusCode)
}
