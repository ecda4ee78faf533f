package server

import (
	"campus/internal/models"
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HidePost handles POST /api/moderation/posts/:id/hide
func (s *Server) HidePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.moderationService.HidePost(c.Context(), principal, postID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UnhidePost handles DELETE /api/moderation/posts/:id/hide
func (s *Server) UnhidePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.moderationService.UnhidePost(c.Context(), principal, postID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// HideComment handles POST /api/moderation/comments/:id/hide
func (s *Server) HideComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.moderationService.HideComment(c.Context(), principal, commentID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// UnhideComment handles DELETE /api/moderation/comments/:id/hide
func (s *Server) UnhideComment(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.moderationService.UnhideComment(c.Context(), principal, commentID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// CreateModeratorBlock handles POST /api/moderation/blocks
func (s *Server) CreateModeratorBlock(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	var req struct {
		BlockedUserID uint   `json:"blocked_user_id"`
		SchoolID      uint   `json:"school_id"`
		Reason        string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.BlockedUserID == 0 || req.SchoolID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("blocked_user_id and school_id are required"))
	}

	if err := s.moderationService.BlockUser(c.Context(), service.ModeratorBlockInput{
		Actor:         principal,
		BlockedUserID: req.BlockedUserID,
		SchoolID:      req.SchoolID,
		Reason:        req.Reason,
	}); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// RemoveModeratorBlock handles DELETE /api/moderation/blocks/:userId/:schoolId
func (s *Server) RemoveModeratorBlock(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	blockedUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	schoolID, err := s.parseID(c, "schoolId")
	if err != nil {
		return nil
	}

	if err := s.moderationService.UnblockUser(c.Context(), principal, blockedUserID, schoolID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListModeratorBlocks handles GET /api/moderation/blocks/:moderatorId
func (s *Server) ListModeratorBlocks(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	moderatorID, err := s.parseID(c, "moderatorId")
	if err != nil {
		return nil
	}

	blocks, err := s.moderationService.ListBlocks(c.Context(), principal, moderatorID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}
