package server

import (
	"campus/internal/models"
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	var req struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		SchoolID  *uint  `json:"school_id"`
		IsPrivate bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Actor:     principal,
		Title:     req.Title,
		Body:      req.Body,
		SchoolID:  req.SchoolID,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), principal, postID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	page := parsePage(c)

	feed, err := s.postService.Feed(c.Context(), service.FeedInput{
		Viewer: principal,
		Page:   page.Page,
		Size:   page.Size,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetSchoolFeed handles GET /api/schools/:id/posts. The feed covers the
// school's entire subtree.
func (s *Server) GetSchoolFeed(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	schoolID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)

	feed, err := s.postService.Feed(c.Context(), service.FeedInput{
		Viewer:   principal,
		SchoolID: &schoolID,
		Page:     page.Page,
		Size:     page.Size,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetUserFeed handles GET /api/users/:id/posts
func (s *Server) GetUserFeed(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)

	feed, err := s.postService.Feed(c.Context(), service.FeedInput{
		Viewer: principal,
		UserID: &userID,
		Page:   page.Page,
		Size:   page.Size,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		IsPrivate *bool  `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Actor:     principal,
		PostID:    postID,
		Title:     req.Title,
		Body:      req.Body,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), principal, postID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AcquirePostLock handles POST /api/posts/:id/lock
func (s *Server) AcquirePostLock(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.AcquireLock(c.Context(), principal, postID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReleasePostLock handles DELETE /api/posts/:id/lock
func (s *Server) ReleasePostLock(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.ReleaseLock(c.Context(), principal, postID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.Context(), principal, postID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	principal, err := s.principal(c)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.Context(), principal, postID); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
