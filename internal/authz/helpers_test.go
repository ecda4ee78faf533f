package authz

import (
	"context"

	"campus/internal/models"
)

// stubAssignments is an in-memory AssignmentSource.
type stubAssignments struct {
	roots map[uint]*uint
}

func newStubAssignments() *stubAssignments {
	return &stubAssignments{roots: map[uint]*uint{}}
}

func (s *stubAssignments) assign(moderatorID, rootID uint) {
	r := rootID
	s.roots[moderatorID] = &r
}

func (s *stubAssignments) unassign(moderatorID uint) {
	s.roots[moderatorID] = nil
}

func (s *stubAssignments) AssignedRoot(_ context.Context, moderatorID uint) (*uint, error) {
	return s.roots[moderatorID], nil
}

// memBlockStore is an in-memory BlockStore.
type memBlockStore struct {
	modBlocks  []models.ModeratorBlock
	userBlocks []models.UserBlock
}

func newMemBlockStore() *memBlockStore {
	return &memBlockStore{}
}

func (s *memBlockStore) ModeratorBlockExists(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	for _, b := range s.modBlocks {
		if b.ModeratorID == moderatorID && b.BlockedUserID == blockedUserID && b.SchoolID == schoolID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memBlockStore) CreateModeratorBlock(_ context.Context, block *models.ModeratorBlock) error {
	s.modBlocks = append(s.modBlocks, *block)
	return nil
}

func (s *memBlockStore) DeleteModeratorBlock(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	for i, b := range s.modBlocks {
		if b.ModeratorID == moderatorID && b.BlockedUserID == blockedUserID && b.SchoolID == schoolID {
			s.modBlocks = append(s.modBlocks[:i], s.modBlocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memBlockStore) ModeratorsBlocking(_ context.Context, userID, schoolID uint) ([]uint, error) {
	var out []uint
	for _, b := range s.modBlocks {
		if b.BlockedUserID == userID && b.SchoolID == schoolID {
			out = append(out, b.ModeratorID)
		}
	}
	return out, nil
}

func (s *memBlockStore) ModeratorBlocksForUsers(_ context.Context, userIDs []uint) ([]models.ModeratorBlock, error) {
	want := map[uint]struct{}{}
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var out []models.ModeratorBlock
	for _, b := range s.modBlocks {
		if _, ok := want[b.BlockedUserID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memBlockStore) UserBlockExists(_ context.Context, blockerID, blockedID uint) (bool, error) {
	for _, b := range s.userBlocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memBlockStore) CreateUserBlock(_ context.Context, block *models.UserBlock) error {
	s.userBlocks = append(s.userBlocks, *block)
	return nil
}

func (s *memBlockStore) DeleteUserBlock(_ context.Context, blockerID, blockedID uint) (bool, error) {
	for i, b := range s.userBlocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			s.userBlocks = append(s.userBlocks[:i], s.userBlocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memBlockStore) BlockedUserIDs(_ context.Context, blockerID uint) ([]uint, error) {
	var out []uint
	for _, b := range s.userBlocks {
		if b.BlockerID == blockerID {
			out = append(out, b.BlockedID)
		}
	}
	return out, nil
}

func uintPtr(v uint) *uint {
	return &v
}

// chainStore builds a store seeded with the A(1) -> B(2) -> C(3) chain
// used by several scenarios.
func chainStore() *TreeStore {
	return NewTreeStore([]Edge{
		{ID: 1},
		{ID: 2, ParentID: uintPtr(1)},
		{ID: 3, ParentID: uintPtr(2)},
	})
}
