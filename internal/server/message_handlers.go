package server

import (
	"warbler/internal/access"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

type messageResponse struct {
	*models.Message
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
	CanDelete bool  `json:"can_delete"`
}

// Home handles GET /api/home
// @Summary Home timeline
// @Description Newest messages by the caller and the users they follow; empty for anonymous callers
// @Tags messages
// @Produce json
// @Success 200 {array} models.Message
// @Router /home [get]
func (s *Server) Home(c *fiber.Ctx) error {
	uid, ok := currentSession(c).UserID()
	if !ok {
		return c.JSON([]models.Message{})
	}

	msgs, err := s.messageService.Timeline(c.UserContext(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// CreateMessage handles POST /api/messages
// @Summary Post a message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{text=string} true "Message text, at most 140 characters"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /messages [post]
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.Create(c.UserContext(), currentUser(c).ID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMessage handles GET /api/messages/:id
// @Summary Get a message
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [get]
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	msg, err := s.messageService.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	count, err := s.store.Messages.CountLikes(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	sess := currentSession(c)
	resp := messageResponse{
		Message:   msg,
		LikeCount: count,
		CanDelete: access.CanDeleteMessage(sess.CurrentUserID, msg),
	}
	if uid, ok := sess.UserID(); ok {
		if resp.Liked, err = s.messageService.IsLikedBy(ctx, msg, uid); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(resp)
}

// DeleteMessage handles DELETE /api/messages/:id
// @Summary Delete a message
// @Description Only the author may delete a message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [delete]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Delete(c.UserContext(), currentSession(c).CurrentUserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message deleted."})
}

// LikeMessage handles POST /api/messages/:id/like
// @Summary Like a message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/like [post]
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messageService.Like(c.UserContext(), currentUser(c).ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikeMessage handles DELETE /api/messages/:id/like
// @Summary Unlike a message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /messages/{id}/like [delete]
func (s *Server) UnlikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messageService.Unlike(c.UserContext(), currentUser(c).ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": false})
}

// ToggleLike handles POST /api/messages/:id/toggle-like
// @Summary Toggle a like
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} object{liked=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/toggle-like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.messageService.ToggleLike(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
