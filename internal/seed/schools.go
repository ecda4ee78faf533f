package seed

import (
	"fmt"

	"campus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInSchool is a permanent system school. Children nest one level
// here; deeper trees come from presets or the API.
type BuiltInSchool struct {
	Name        string
	Slug        string
	Description string
	Children    []BuiltInSchool
}

// BuiltInSchools defines the permanent school forest.
var BuiltInSchools = []BuiltInSchool{
	{
		Name: "Lincoln High", Slug: "lincoln-high", Description: "The flagship campus.",
		Children: []BuiltInSchool{
			{Name: "Mathematics", Slug: "lincoln-math", Description: "Problem sets, proofs, and competitions."},
			{Name: "Sciences", Slug: "lincoln-science", Description: "Labs, experiments, and field trips."},
			{Name: "Humanities", Slug: "lincoln-hum", Description: "Literature, history, and debate."},
			{Name: "Athletics", Slug: "lincoln-sports", Description: "Teams, tryouts, and game days."},
		},
	},
	{
		Name: "Roosevelt High", Slug: "roosevelt-high", Description: "The east side campus.",
		Children: []BuiltInSchool{
			{Name: "Engineering Club", Slug: "roosevelt-eng", Description: "Robotics and maker projects."},
			{Name: "Arts", Slug: "roosevelt-arts", Description: "Studio, stage, and gallery."},
			{Name: "Music", Slug: "roosevelt-music", Description: "Band, orchestra, and choir."},
		},
	},
	{
		Name: "Westview Academy", Slug: "westview", Description: "The magnet program.",
		Children: []BuiltInSchool{
			{Name: "Computer Science", Slug: "westview-cs", Description: "Programming and systems."},
			{Name: "Model UN", Slug: "westview-mun", Description: "Delegations and conferences."},
		},
	},
}

// Schools seeds the permanent built-in school forest. Re-running updates
// names and descriptions in place; it never duplicates a slug.
func Schools(db *gorm.DB) error {
	for _, root := range BuiltInSchools {
		if err := upsertSchoolTree(db, root, nil); err != nil {
			return fmt.Errorf("seed built-in school %s: %w", root.Slug, err)
		}
	}
	return nil
}

func upsertSchoolTree(db *gorm.DB, item BuiltInSchool, parentID *uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		school := models.School{
			Name:        item.Name,
			Slug:        item.Slug,
			Description: item.Description,
			ParentID:    parentID,
			CreatedByRole: models.UserRoleAdmin,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "parent_id", "updated_at"}),
		}).Create(&school).Error; err != nil {
			return err
		}

		if school.ID == 0 {
			if err := tx.Where("slug = ?", item.Slug).First(&school).Error; err != nil {
				return err
			}
		}

		for _, child := range item.Children {
			if err := upsertSchoolTree(tx, child, &school.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
