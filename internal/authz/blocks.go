package authz

import (
	"context"

	"campus/internal/models"
)

// BlockStore is the persistence port the registry consults. Implemented
// by repository.BlockRepository.
type BlockStore interface {
	ModeratorBlockExists(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error)
	CreateModeratorBlock(ctx context.Context, block *models.ModeratorBlock) error
	DeleteModeratorBlock(ctx context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error)
	// ModeratorsBlocking returns the ids of moderators who placed a block
	// on the user in the given school.
	ModeratorsBlocking(ctx context.Context, userID, schoolID uint) ([]uint, error)
	// ModeratorBlocksForUsers returns all moderator blocks whose blocked
	// user is in the given set, for batch visibility filtering.
	ModeratorBlocksForUsers(ctx context.Context, userIDs []uint) ([]models.ModeratorBlock, error)

	UserBlockExists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	CreateUserBlock(ctx context.Context, block *models.UserBlock) error
	DeleteUserBlock(ctx context.Context, blockerID, blockedID uint) (bool, error)
	// BlockedUserIDs returns every user the blocker has blocked.
	BlockedUserIDs(ctx context.Context, blockerID uint) ([]uint, error)
}

// BlockRegistry arbitrates the two independent block relations:
// moderator-blocks-user-in-school and user-blocks-user. Moderator
// blocks are only effective while the placing moderator still has scope
// over the school; that is re-evaluated against the live tree on every
// query, so a block placed by a moderator who later lost the subtree
// stops counting without any cleanup job.
type BlockRegistry struct {
	store  BlockStore
	scopes *ScopeResolver
}

// NewBlockRegistry creates a registry over the given store and resolver.
func NewBlockRegistry(store BlockStore, scopes *ScopeResolver) *BlockRegistry {
	return &BlockRegistry{store: store, scopes: scopes}
}

// AddModeratorBlock places a school-scoped block on a user. The
// moderator must currently hold scope over the school; an attempt
// outside scope fails with ErrOutOfScope and applies nothing.
func (r *BlockRegistry) AddModeratorBlock(ctx context.Context, moderatorID, blockedUserID, schoolID uint, reason string) error {
	inScope, err := r.scopes.InScope(ctx, moderatorID, schoolID)
	if err != nil {
		return err
	}
	if !inScope {
		return ErrOutOfScope
	}
	exists, err := r.store.ModeratorBlockExists(ctx, moderatorID, blockedUserID, schoolID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyBlocked
	}
	return r.store.CreateModeratorBlock(ctx, &models.ModeratorBlock{
		ModeratorID:   moderatorID,
		BlockedUserID: blockedUserID,
		SchoolID:      schoolID,
		Reason:        reason,
	})
}

// RemoveModeratorBlock lifts a school-scoped block. Removal does not
// require current scope: a moderator may always retract their own
// block, and a stale block is inert anyway.
func (r *BlockRegistry) RemoveModeratorBlock(ctx context.Context, moderatorID, blockedUserID, schoolID uint) error {
	found, err := r.store.DeleteModeratorBlock(ctx, moderatorID, blockedUserID, schoolID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotBlocked
	}
	return nil
}

// IsModeratorBlocked reports whether the user is blocked in the school
// by any moderator who still has authority over it.
func (r *BlockRegistry) IsModeratorBlocked(ctx context.Context, userID, schoolID uint) (bool, error) {
	moderators, err := r.store.ModeratorsBlocking(ctx, userID, schoolID)
	if err != nil {
		return false, err
	}
	for _, modID := range moderators {
		inScope, err := r.scopes.InScope(ctx, modID, schoolID)
		if err != nil {
			return false, err
		}
		if inScope {
			return true, nil
		}
	}
	return false, nil
}

// AddUserBlock places a directional account block.
func (r *BlockRegistry) AddUserBlock(ctx context.Context, blockerID, blockedID uint) error {
	exists, err := r.store.UserBlockExists(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyBlocked
	}
	return r.store.CreateUserBlock(ctx, &models.UserBlock{BlockerID: blockerID, BlockedID: blockedID})
}

// RemoveUserBlock lifts a directional account block.
func (r *BlockRegistry) RemoveUserBlock(ctx context.Context, blockerID, blockedID uint) error {
	found, err := r.store.DeleteUserBlock(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotBlocked
	}
	return nil
}

// IsUserBlocked reports whether the viewer has blocked the author.
// The relation is directional: the author's view of the viewer's
// content is unaffected.
func (r *BlockRegistry) IsUserBlocked(ctx context.Context, viewerID, authorID uint) (bool, error) {
	return r.store.UserBlockExists(ctx, viewerID, authorID)
}
