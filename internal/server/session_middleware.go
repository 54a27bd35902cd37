package server

import (
	"context"
	"strings"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "warbler_session"

const (
	localSession     = "session"
	localCurrentUser = "currentUser"
	localToken       = "sessionToken"
)

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(SessionCookie)
}

// Identify resolves the request's session, if any. Requests with a missing or
// invalid token continue as anonymous.
func (s *Server) Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.Anonymous()

		if token := tokenFromRequest(c); token != "" {
			resolved, err := s.sessions.Resolve(c.UserContext(), token)
			if err == nil {
				sess = resolved
				c.Locals(localToken, token)
			}
		}

		c.Locals(localSession, sess)
		if uid, ok := sess.UserID(); ok {
			c.Locals("userID", uid)
			c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uid))
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests and loads the signed-in user.
func (s *Server) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentSession(c).UserID()
		if !ok {
			return respondUnauthorized(c)
		}

		user, err := s.userService.GetUser(c.UserContext(), uid)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return respondUnauthorized(c)
			}
			return respondError(c, err)
		}

		c.Locals(localCurrentUser, user)
		return c.Next()
	}
}

func respondUnauthorized(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized,
		models.NewUnauthorizedError(service.AccessUnauthorized))
}

func currentSession(c *fiber.Ctx) session.Context {
	if sess, ok := c.Locals(localSession).(session.Context); ok {
		return sess
	}
	return session.Anonymous()
}

// currentUser is only set behind RequireUser.
func currentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(localCurrentUser).(*models.User); ok {
		return u
	}
	return nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
