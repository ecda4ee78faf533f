package repository

import (
	"context"
	"errors"

	"campus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoginStateRepository persists per-account lockout state. Mutate runs
// the given function against a row-locked state so concurrent login
// attempts cannot lose counter increments.
type LoginStateRepository interface {
	Get(ctx context.Context, userID uint) (*models.LoginState, error)
	Mutate(ctx context.Context, userID uint, fn func(st *models.LoginState)) (*models.LoginState, error)
}

type loginStateRepository struct {
	db *gorm.DB
}

// NewLoginStateRepository returns a new LoginStateRepository implementation.
func NewLoginStateRepository(db *gorm.DB) LoginStateRepository {
	return &loginStateRepository{db: db}
}

func (r *loginStateRepository) Get(ctx context.Context, userID uint) (*models.LoginState, error) {
	var state models.LoginState
	err := r.db.WithContext(ctx).First(&state, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.LoginState{UserID: userID}, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &state, nil
}

func (r *loginStateRepository) Mutate(ctx context.Context, userID uint, fn func(st *models.LoginState)) (*models.LoginState, error) {
	var state models.LoginState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&state, "user_id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			state = models.LoginState{UserID: userID}
			if err := tx.Create(&state).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		fn(&state)
		return tx.Save(&state).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &state, nil
}
