package service

import (
	"context"
	"testing"

	"campus/internal/authz"
	"campus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(users *userRepoStub, assignments *assignRepoStub) (*UserService, *memBlockRepo) {
	trees := testTreeStore()
	scopes := authz.NewScopeResolver(trees, assignments)
	blocks := newMemBlockRepo()
	registry := authz.NewBlockRegistry(blocks, scopes)
	return NewUserService(users, assignments, registry, trees), blocks
}

func TestUserService_BlockUser_Directional(t *testing.T) {
	svc, blocks := newUserServiceForTest(noopUserRepo(), newAssignRepoStub())
	ctx := context.Background()

	require.NoError(t, svc.BlockUser(ctx, authz.UserPrincipal(7), 8))

	// only the blocker's direction exists
	forward, _ := blocks.UserBlockExists(ctx, 7, 8)
	reverse, _ := blocks.UserBlockExists(ctx, 8, 7)
	assert.True(t, forward)
	assert.False(t, reverse)

	err := svc.BlockUser(ctx, authz.UserPrincipal(7), 8)
	requireAppErrorCode(t, err, "CONFLICT")

	err = svc.BlockUser(ctx, authz.UserPrincipal(7), 7)
	requireAppErrorCode(t, err, "VALIDATION_ERROR")

	require.NoError(t, svc.UnblockUser(ctx, authz.UserPrincipal(7), 8))
	err = svc.UnblockUser(ctx, authz.UserPrincipal(7), 8)
	requireAppErrorCode(t, err, "NOT_FOUND")
}

func TestUserService_AssignModerator(t *testing.T) {
	users := noopUserRepo()
	var savedRole models.UserRole
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Role: models.UserRoleUser}, nil
	}
	users.updateFn = func(_ context.Context, u *models.User) error {
		savedRole = u.Role
		return nil
	}
	assignments := newAssignRepoStub()
	svc, _ := newUserServiceForTest(users, assignments)
	ctx := context.Background()

	t.Run("non-admin forbidden", func(t *testing.T) {
		err := svc.AssignModerator(ctx, authz.ModeratorPrincipal(10), 20, uintPtr(2))
		requireAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("unknown school rejected", func(t *testing.T) {
		err := svc.AssignModerator(ctx, authz.AdminPrincipal(1), 20, uintPtr(99))
		requireAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("assignment promotes and records root", func(t *testing.T) {
		require.NoError(t, svc.AssignModerator(ctx, authz.AdminPrincipal(1), 20, uintPtr(2)))
		assert.Equal(t, models.UserRoleModerator, savedRole)
		root, err := assignments.AssignedRoot(ctx, 20)
		require.NoError(t, err)
		require.NotNil(t, root)
		assert.Equal(t, uint(2), *root)
	})
}

func TestUserService_RevokeModerator(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Role: models.UserRoleModerator}, nil
	}
	assignments := newAssignRepoStub()
	assignments.roots[20] = uintPtr(2)
	svc, _ := newUserServiceForTest(users, assignments)
	ctx := context.Background()

	require.NoError(t, svc.RevokeModerator(ctx, authz.AdminPrincipal(1), 20))
	root, err := assignments.AssignedRoot(ctx, 20)
	require.NoError(t, err)
	assert.Nil(t, root)
}
