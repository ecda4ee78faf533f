package server

import (
	"errors"
	"strings"
	"unicode"

	"campus/internal/authz"
	"campus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// PageParams holds parsed page/size query parameters.
type PageParams struct {
	Page int
	Size int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePage extracts page and size query parameters. Pages are 1-based.
func parsePage(c *fiber.Ctx) PageParams {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	size := c.QueryInt("size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return PageParams{Page: page, Size: size}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "moderatorId" -> "moderator ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// principal resolves the caller's identity from the auth middleware locals.
// Requests with no user ID resolve to the anonymous principal. The role is
// read from the user record, not the token, so demotions apply immediately.
func (s *Server) principal(c *fiber.Ctx) (authz.Principal, error) {
	uid := c.Locals("userID")
	if uid == nil {
		return authz.Anonymous(), nil
	}
	userID, ok := uid.(uint)
	if !ok {
		return authz.Anonymous(), nil
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return authz.Anonymous(), err
	}
	if user == nil {
		return authz.Anonymous(), models.NewUnauthorizedError("Account no longer exists")
	}

	switch {
	case user.IsAdmin():
		return authz.AdminPrincipal(user.ID), nil
	case user.IsModerator():
		return authz.ModeratorPrincipal(user.ID), nil
	default:
		return authz.UserPrincipal(user.ID), nil
	}
}

// statusForError maps application error codes to HTTP status codes.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "CONFLICT":
		return fiber.StatusConflict
	case "ACCOUNT_LOCKED":
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes a JSON error response with the status derived
// from the service-layer error code.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}
