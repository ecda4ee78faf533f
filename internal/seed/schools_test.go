package seed

import (
	"testing"

	"campus/internal/models"
	"campus/internal/validation"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func countBuiltIn(items []BuiltInSchool) int {
	n := 0
	for _, item := range items {
		n += 1 + countBuiltIn(item.Children)
	}
	return n
}

func TestBuiltInSchools_ValidSlugs(t *testing.T) {
	var walk func(items []BuiltInSchool)
	walk = func(items []BuiltInSchool) {
		for _, item := range items {
			if err := validation.ValidateSchoolSlug(item.Slug); err != nil {
				t.Errorf("built-in slug %q rejected: %v", item.Slug, err)
			}
			walk(item.Children)
		}
	}
	walk(BuiltInSchools)
}

func TestSchools_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.School{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := Schools(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Schools(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var schoolCount int64
	if err := db.Model(&models.School{}).Count(&schoolCount).Error; err != nil {
		t.Fatalf("count schools: %v", err)
	}
	if want := int64(countBuiltIn(BuiltInSchools)); schoolCount != want {
		t.Fatalf("expected %d schools, got %d", want, schoolCount)
	}

	for _, root := range BuiltInSchools {
		var parent models.School
		if err := db.Where("slug = ?", root.Slug).First(&parent).Error; err != nil {
			t.Fatalf("missing root %s: %v", root.Slug, err)
		}
		if parent.ParentID != nil {
			t.Fatalf("root %s has a parent", root.Slug)
		}

		for _, child := range root.Children {
			var s models.School
			if err := db.Where("slug = ?", child.Slug).First(&s).Error; err != nil {
				t.Fatalf("missing school %s: %v", child.Slug, err)
			}
			if s.ParentID == nil || *s.ParentID != parent.ID {
				t.Fatalf("school %s not linked to %s", child.Slug, root.Slug)
			}
		}
	}
}
