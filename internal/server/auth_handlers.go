package server

import (
	"campus/internal/authz"
	"campus/internal/featureflags"
	"campus/internal/models"
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// fingerprint assembles the device fingerprint used by the lockout policy.
// The device type is the client platform hint, not the raw user agent, so
// browser updates do not look like new devices.
func fingerprint(c *fiber.Ctx) authz.Fingerprint {
	deviceType := c.Get("Sec-CH-UA-Platform")
	if deviceType == "" {
		deviceType = c.Get("X-Device-Type")
	}
	return authz.Fingerprint{
		IP:         c.IP(),
		DeviceType: deviceType,
		DeviceID:   c.Get("X-Device-ID"),
	}
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	if !s.flags.Enabled(featureflags.FlagOpenSignups, 0) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Signups are temporarily closed"))
	}

	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.authService.Signup(c.Context(), req)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	// Sign the new account in directly.
	result, err := s.authService.Login(c.Context(), service.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint(c),
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": result.Token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Login(c.Context(), service.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint(c),
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(result)
}
