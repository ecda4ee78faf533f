package server

import (
	"campus/internal/models"
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSchoolTree handles GET /api/schools
func (s *Server) GetSchoolTree(c *fiber.Ctx) error {
	tree, err := s.schoolService.Tree(c.Context())
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"schools": tree})
}

// GetSchoolBySlug handles GET /api/schools/:slug
func (s *Server) GetSchoolBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("School slug is required"))
	}

	school, err := s.schoolService.GetSchoolBySlug(c.Context(), slug)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(school)
}

// CreateSchool handles POST /api/schools
func (s *Server) CreateSchool(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	school, err := s.schoolService.CreateSchool(c.Context(), service.CreateSchoolInput{
		Actor:       principal,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(school)
}

// UpdateSchool handles PUT /api/schools/:id
func (s *Server) UpdateSchool(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	schoolID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	school, err := s.schoolService.RenameSchool(c.Context(), service.RenameSchoolInput{
		Actor:       principal,
		SchoolID:    schoolID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(school)
}

// ReparentSchool handles PUT /api/schools/:id/parent
func (s *Server) ReparentSchool(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	schoolID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ParentID *uint `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	school, err := s.schoolService.ReparentSchool(c.Context(), service.ReparentSchoolInput{
		Actor:       principal,
		SchoolID:    schoolID,
		NewParentID: req.ParentID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(school)
}

// DeleteSchool handles DELETE /api/schools/:id
func (s *Server) DeleteSchool(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	schoolID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.schoolService.DeleteSchool(c.Context(), principal, schoolID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
