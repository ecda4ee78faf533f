package server

import (
	"campus/internal/models"
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body      string `json:"body"`
		ParentID  *uint  `json:"parent_id"`
		IsPrivate bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		Actor:     principal,
		PostID:    postID,
		ParentID:  req.ParentID,
		Body:      req.Body,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)

	comments, err := s.commentService.ListComments(c.Context(), principal, postID, page.Page, page.Size)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body      string `json:"body"`
		IsPrivate *bool  `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		Actor:     principal,
		CommentID: commentID,
		Body:      req.Body,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), principal, commentID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.LikeComment(c.Context(), principal, commentID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikeComment handles DELETE /api/comments/:id/like
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.UnlikeComment(c.Context(), principal, commentID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
