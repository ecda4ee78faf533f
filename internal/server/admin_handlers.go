package server

import (
	"campus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AssignModerator handles POST /api/admin/moderators/:id
func (s *Server) AssignModerator(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	moderatorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		SchoolID *uint `json:"school_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.AssignModerator(c.Context(), principal, moderatorID, req.SchoolID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RevokeModerator handles DELETE /api/admin/moderators/:id
func (s *Server) RevokeModerator(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	moderatorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.RevokeModerator(c.Context(), principal, moderatorID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlockAccount handles POST /api/admin/users/:id/unlock
func (s *Server) UnlockAccount(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.authService.UnlockAccount(c.Context(), principal, userID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLockStatus handles GET /api/admin/users/:id/lock-status
func (s *Server) GetLockStatus(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	locked, until, err := s.authService.LockStatus(c.Context(), principal, userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"locked":       locked,
		"locked_until": until,
	})
}
