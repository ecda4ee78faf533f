package validation

import (
	"fmt"
	"regexp"
	"strings"

	"campus/internal/models"
)

var schoolSlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

var reservedSchoolSlugs = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"schools":  {},
	"settings": {},
	"users":    {},
	"posts":    {},
	"comments": {},
	"blocks":   {},
	"ws":       {},
	"metrics":  {},
	"login":    {},
	"signup":   {},
}

const maxSchoolNameLen = 120

// ValidateSchoolSlug validates school slug format and reserved names.
func ValidateSchoolSlug(slug string) error {
	if !schoolSlugRegex.MatchString(slug) {
		return models.NewValidationError("Slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return models.NewValidationError("Slug cannot start or end with a hyphen")
	}

	if _, exists := reservedSchoolSlugs[slug]; exists {
		return models.NewValidationError("Slug is reserved")
	}

	return nil
}

// ValidateSchoolName checks name presence and length.
func ValidateSchoolName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.NewValidationError("Name is required")
	}
	if len(trimmed) > maxSchoolNameLen {
		return models.NewValidationError(fmt.Sprintf("Name too long (max %d characters)", maxSchoolNameLen))
	}
	return nil
}
