package repository

import (
	"context"
	"errors"

	"campus/internal/models"

	"gorm.io/gorm"
)

// AssignmentRepository defines persistence for moderator scope
// assignments. AssignedRoot satisfies authz.AssignmentSource.
type AssignmentRepository interface {
	AssignedRoot(ctx context.Context, moderatorID uint) (*uint, error)
	Upsert(ctx context.Context, moderatorID uint, schoolID *uint) error
	GetByModerator(ctx context.Context, moderatorID uint) (*models.ModeratorAssignment, error)
	ListBySchool(ctx context.Context, schoolID uint) ([]models.ModeratorAssignment, error)
	Delete(ctx context.Context, moderatorID uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository returns a new AssignmentRepository implementation.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) AssignedRoot(ctx context.Context, moderatorID uint) (*uint, error) {
	var assignment models.ModeratorAssignment
	err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return assignment.SchoolID, nil
}

func (r *assignmentRepository) Upsert(ctx context.Context, moderatorID uint, schoolID *uint) error {
	var assignment models.ModeratorAssignment
	err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		First(&assignment).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment = models.ModeratorAssignment{ModeratorID: moderatorID, SchoolID: schoolID}
		if err := r.db.WithContext(ctx).Create(&assignment).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	case err != nil:
		return models.NewInternalError(err)
	}

	assignment.SchoolID = schoolID
	if err := r.db.WithContext(ctx).Save(&assignment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *assignmentRepository) GetByModerator(ctx context.Context, moderatorID uint) (*models.ModeratorAssignment, error) {
	var assignment models.ModeratorAssignment
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("moderator_id = ?", moderatorID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("ModeratorAssignment", moderatorID)
		}
		return nil, models.NewInternalError(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListBySchool(ctx context.Context, schoolID uint) ([]models.ModeratorAssignment, error) {
	var assignments []models.ModeratorAssignment
	err := r.db.WithContext(ctx).
		Preload("Moderator").
		Where("school_id = ?", schoolID).
		Find(&assignments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return assignments, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, moderatorID uint) error {
	err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		Delete(&models.ModeratorAssignment{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
