package server

import (
	"log/slog"

	"warbler/internal/access"
	"warbler/internal/middleware"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

type profileResponse struct {
	*service.Profile
	IsOwnProfile bool `json:"is_own_profile"`
	IsFollowing  bool `json:"is_following"`
}

// ListUsers handles GET /api/users
// @Summary List users
// @Description List all users, optionally filtered by a username substring
// @Tags users
// @Produce json
// @Param q query string false "Username search"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Description A user with their messages and follow counts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} profileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	sess := currentSession(c)
	resp := profileResponse{
		Profile:      profile,
		IsOwnProfile: access.IsOwnProfile(sess.CurrentUserID, profile.User),
	}
	if uid, ok := sess.UserID(); ok && !resp.IsOwnProfile {
		if resp.IsFollowing, err = s.userService.IsFollowing(c.UserContext(), uid, id); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(resp)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users followed by a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.userService.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.userService.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetLikes handles GET /api/users/:id/likes
// @Summary Messages liked by a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.Message
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/likes [get]
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgs, err := s.messageService.LikedBy(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// FollowUser handles POST /api/users/follow/:id
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User to follow"
// @Success 200 {array} models.User "Users the caller now follows"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/follow/{id} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	me := currentUser(c)

	if err := s.userService.Follow(c.UserContext(), me.ID, id); err != nil {
		return respondError(c, err)
	}
	following, err := s.userService.Following(c.UserContext(), me.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(following)
}

// StopFollowing handles POST /api/users/stop-following/:id
// @Summary Stop following a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User to unfollow"
// @Success 200 {array} models.User "Users the caller still follows"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/stop-following/{id} [post]
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	me := currentUser(c)

	if err := s.userService.StopFollowing(c.UserContext(), me.ID, id); err != nil {
		return respondError(c, err)
	}
	following, err := s.userService.Following(c.UserContext(), me.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(following)
}

// UpdateProfile handles PATCH /api/users/profile
// @Summary Update own profile
// @Description Requires the current password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUser(c).ID

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount handles DELETE /api/users
// @Summary Delete own account
// @Description Removes the account with its messages, likes and follows, and ends the session
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	me := currentUser(c)

	if err := s.userService.DeleteUser(c.UserContext(), me.ID); err != nil {
		return respondError(c, err)
	}

	if token, ok := c.Locals(localToken).(string); ok {
		if err := s.sessions.Revoke(c.UserContext(), token); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session", slog.String("error", err.Error()))
		}
	}
	s.clearSessionCookie(c)

	return c.JSON(fiber.Map{"message": "Account deleted."})
}

