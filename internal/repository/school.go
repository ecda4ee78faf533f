package repository

import (
	"context"
	"errors"

	"campus/internal/cache"
	"campus/internal/models"

	"gorm.io/gorm"
)

// SchoolRepository defines persistence operations for the school forest.
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id uint) (*models.School, error)
	GetBySlug(ctx context.Context, slug string) (*models.School, error)
	ListAll(ctx context.Context) ([]models.School, error)
	Update(ctx context.Context, school *models.School) error
	// Delete removes a school, reparents its children to heir and moves
	// its posts to heir, all in one transaction. A nil heir detaches
	// children to roots and posts to school-less.
	Delete(ctx context.Context, id uint, heir *uint) error
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository returns a new SchoolRepository implementation.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	if err := r.db.WithContext(ctx).Create(school).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("School slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.SchoolTreeKey)
	return nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (*models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("School", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &school, nil
}

func (r *schoolRepository) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	var school models.School
	key := cache.SchoolKey(slug)

	err := cache.Aside(ctx, key, &school, cache.SchoolTTL, func() error {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&school).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("School", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepository) ListAll(ctx context.Context) ([]models.School, error) {
	var schools []models.School
	if err := r.db.WithContext(ctx).Order("id").Find(&schools).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return schools, nil
}

func (r *schoolRepository) Update(ctx context.Context, school *models.School) error {
	if err := r.db.WithContext(ctx).Save(school).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("School slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateSchool(ctx, school.Slug)
	return nil
}

func (r *schoolRepository) Delete(ctx context.Context, id uint, heir *uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.School{}).
			Where("parent_id = ?", id).
			Update("parent_id", heir).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("school_id = ?", id).
			Update("school_id", heir).Error; err != nil {
			return err
		}
		// assignments rooted at the deleted school fall back to its heir
		if err := tx.Model(&models.ModeratorAssignment{}).
			Where("school_id = ?", id).
			Update("school_id", heir).Error; err != nil {
			return err
		}
		return tx.Delete(&models.School{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.SchoolTreeKey)
	return nil
}
