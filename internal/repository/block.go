package repository

import (
	"context"

	"campus/internal/models"

	"gorm.io/gorm"
)

// BlockRepository persists the two block relations. It satisfies
// authz.BlockStore so the registry can be wired directly on top of it.
type BlockRepository interface {
	ModeratorBlockExists(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error)
	CreateModeratorBlock(ctx context.Context, block *models.ModeratorBlock) error
	DeleteModeratorBlock(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error)
	ModeratorsBlocking(ctx context.Context, userID, schoolID uint) ([]uint, error)
	ModeratorBlocksForUsers(ctx context.Context, userIDs []uint) ([]models.ModeratorBlock, error)
	ListModeratorBlocks(ctx context.Context, moderatorID uint) ([]models.ModeratorBlock, error)

	UserBlockExists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	CreateUserBlock(ctx context.Context, block *models.UserBlock) error
	DeleteUserBlock(ctx context.Context, blockerID, blockedID uint) (bool, error)
	BlockedUserIDs(ctx context.Context, blockerID uint) ([]uint, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository returns a new BlockRepository implementation.
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) ModeratorBlockExists(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ModeratorBlock{}).
		Where("moderator_id = ? AND blocked_user_id = ? AND school_id = ?", moderatorID, blockedUserID, schoolID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *blockRepository) CreateModeratorBlock(ctx context.Context, block *models.ModeratorBlock) error {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Block already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blockRepository) DeleteModeratorBlock(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("moderator_id = ? AND blocked_user_id = ? AND school_id = ?", moderatorID, blockedUserID, schoolID).
		Delete(&models.ModeratorBlock{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *blockRepository) ModeratorsBlocking(ctx context.Context, userID, schoolID uint) ([]uint, error) {
	var moderatorIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.ModeratorBlock{}).
		Where("blocked_user_id = ? AND school_id = ?", userID, schoolID).
		Pluck("moderator_id", &moderatorIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return moderatorIDs, nil
}

func (r *blockRepository) ModeratorBlocksForUsers(ctx context.Context, userIDs []uint) ([]models.ModeratorBlock, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var blocks []models.ModeratorBlock
	err := r.db.WithContext(ctx).
		Where("blocked_user_id IN ?", userIDs).
		Find(&blocks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blocks, nil
}

func (r *blockRepository) ListModeratorBlocks(ctx context.Context, moderatorID uint) ([]models.ModeratorBlock, error) {
	var blocks []models.ModeratorBlock
	err := r.db.WithContext(ctx).
		Preload("BlockedUser").
		Preload("School").
		Where("moderator_id = ?", moderatorID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blocks, nil
}

func (r *blockRepository) UserBlockExists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *blockRepository) CreateUserBlock(ctx context.Context, block *models.UserBlock) error {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Block already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blockRepository) DeleteUserBlock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *blockRepository) BlockedUserIDs(ctx context.Context, blockerID uint) ([]uint, error) {
	var blockedIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &blockedIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blockedIDs, nil
}
