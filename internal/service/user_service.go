package service

import (
	"context"
	"errors"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/repository"
)

// UserService covers profiles, directional user blocks, and the admin
// operations that manage moderator delegation.
type UserService struct {
	userRepo   repository.UserRepository
	assignRepo repository.AssignmentRepository
	registry   *authz.BlockRegistry
	trees      *authz.TreeStore
}

type UpdateProfileInput struct {
	Actor authz.Principal
	Bio   string
}

func NewUserService(
	userRepo repository.UserRepository,
	assignRepo repository.AssignmentRepository,
	registry *authz.BlockRegistry,
	trees *authz.TreeStore,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		assignRepo: assignRepo,
		registry:   registry,
		trees:      trees,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Login required")
	}
	user, err := s.userRepo.GetByID(ctx, in.Actor.UserID)
	if err != nil {
		return nil, err
	}
	user.Bio = in.Bio
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BlockUser places a directional block: the actor stops seeing the
// target's posts and comments. The target's view is unaffected.
func (s *UserService) BlockUser(ctx context.Context, actor authz.Principal, targetID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	if actor.UserID == targetID {
		return models.NewValidationError("Cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.registry.AddUserBlock(ctx, actor.UserID, targetID); err != nil {
		if errors.Is(err, authz.ErrAlreadyBlocked) {
			return models.NewConflictError("User is already blocked")
		}
		return err
	}
	return nil
}

func (s *UserService) UnblockUser(ctx context.Context, actor authz.Principal, targetID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	if err := s.registry.RemoveUserBlock(ctx, actor.UserID, targetID); err != nil {
		if errors.Is(err, authz.ErrNotBlocked) {
			return models.NewNotFoundError("UserBlock", targetID)
		}
		return err
	}
	return nil
}

// AssignModerator delegates a school subtree to a user. The user is
// promoted to moderator if needed; a nil schoolID leaves them a
// moderator with empty scope.
func (s *UserService) AssignModerator(ctx context.Context, actor authz.Principal, moderatorID uint, schoolID *uint) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Only admins can assign moderators")
	}
	user, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return models.NewValidationError("Admins do not need a moderator assignment")
	}
	if schoolID != nil && !s.trees.Snapshot().Contains(*schoolID) {
		return models.NewNotFoundError("School", *schoolID)
	}

	if !user.IsModerator() {
		user.Role = models.UserRoleModerator
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
	}
	return s.assignRepo.Upsert(ctx, moderatorID, schoolID)
}

// RevokeModerator demotes a moderator back to a regular user and drops
// their assignment. Their past blocks stay on record but stop counting
// because scope resolution finds no assignment.
func (s *UserService) RevokeModerator(ctx context.Context, actor authz.Principal, moderatorID uint) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Only admins can revoke moderators")
	}
	user, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		return err
	}
	if !user.IsModerator() {
		return models.NewValidationError("User is not a moderator")
	}

	user.Role = models.UserRoleUser
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.assignRepo.Delete(ctx, moderatorID)
}
