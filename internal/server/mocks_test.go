package server

import (
	"context"
	"sync"

	"campus/internal/authz"
	"campus/internal/featureflags"
	"campus/internal/models"
	"campus/internal/observability"
	"campus/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	args := m.Called(ctx, role)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSchoolRepository is a testify mock of repository.SchoolRepository.
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Create(ctx context.Context, school *models.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) GetByID(ctx context.Context, id uint) (*models.School, error) {
	args := m.Called(ctx, id)
	if school, ok := args.Get(0).(*models.School); ok {
		return school, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSchoolRepository) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	args := m.Called(ctx, slug)
	if school, ok := args.Get(0).(*models.School); ok {
		return school, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSchoolRepository) ListAll(ctx context.Context) ([]models.School, error) {
	args := m.Called(ctx)
	if schools, ok := args.Get(0).([]models.School); ok {
		return schools, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSchoolRepository) Update(ctx context.Context, school *models.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) Delete(ctx context.Context, id uint, heir *uint) error {
	args := m.Called(ctx, id, heir)
	return args.Error(0)
}

// memAssignments is an in-memory repository.AssignmentRepository.
type memAssignments struct {
	mu    sync.Mutex
	roots map[uint]*uint
}

func newMemAssignments() *memAssignments {
	return &memAssignments{roots: make(map[uint]*uint)}
}

func (m *memAssignments) AssignedRoot(_ context.Context, moderatorID uint) (*uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roots[moderatorID], nil
}

func (m *memAssignments) Upsert(_ context.Context, moderatorID uint, schoolID *uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots[moderatorID] = schoolID
	return nil
}

func (m *memAssignments) GetByModerator(_ context.Context, moderatorID uint) (*models.ModeratorAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.roots[moderatorID]
	if !ok {
		return nil, nil
	}
	return &models.ModeratorAssignment{ModeratorID: moderatorID, SchoolID: root}, nil
}

func (m *memAssignments) ListBySchool(_ context.Context, _ uint) ([]models.ModeratorAssignment, error) {
	return nil, nil
}

func (m *memAssignments) Delete(_ context.Context, moderatorID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roots, moderatorID)
	return nil
}

// memLoginStates is an in-memory repository.LoginStateRepository.
type memLoginStates struct {
	mu     sync.Mutex
	states map[uint]*models.LoginState
}

func newMemLoginStates() *memLoginStates {
	return &memLoginStates{states: make(map[uint]*models.LoginState)}
}

func (m *memLoginStates) Get(_ context.Context, userID uint) (*models.LoginState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.LoginState{UserID: userID}, nil
}

func (m *memLoginStates) Mutate(_ context.Context, userID uint, fn func(st *models.LoginState)) (*models.LoginState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		st = &models.LoginState{UserID: userID}
		m.states[userID] = st
	}
	fn(st)
	cp := *st
	return &cp, nil
}

// memBlocks is an in-memory repository.BlockRepository covering what the
// handler tests exercise.
type memBlocks struct {
	mu         sync.Mutex
	modBlocks  map[[3]uint]*models.ModeratorBlock
	userBlocks map[[2]uint]bool
}

func newMemBlocks() *memBlocks {
	return &memBlocks{
		modBlocks:  make(map[[3]uint]*models.ModeratorBlock),
		userBlocks: make(map[[2]uint]bool),
	}
}

func (m *memBlocks) ModeratorBlockExists(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.modBlocks[[3]uint{moderatorID, blockedUserID, schoolID}]
	return ok, nil
}

func (m *memBlocks) CreateModeratorBlock(_ context.Context, block *models.ModeratorBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modBlocks[[3]uint{block.ModeratorID, block.BlockedUserID, block.SchoolID}] = block
	return nil
}

func (m *memBlocks) DeleteModeratorBlock(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [3]uint{moderatorID, blockedUserID, schoolID}
	if _, ok := m.modBlocks[key]; !ok {
		return false, nil
	}
	delete(m.modBlocks, key)
	return true, nil
}

func (m *memBlocks) ModeratorsBlocking(_ context.Context, userID, schoolID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint
	for key := range m.modBlocks {
		if key[1] == userID && key[2] == schoolID {
			out = append(out, key[0])
		}
	}
	return out, nil
}

func (m *memBlocks) ModeratorBlocksForUsers(_ context.Context, userIDs []uint) ([]models.ModeratorBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ModeratorBlock
	for _, block := range m.modBlocks {
		for _, id := range userIDs {
			if block.BlockedUserID == id {
				out = append(out, *block)
			}
		}
	}
	return out, nil
}

func (m *memBlocks) ListModeratorBlocks(_ context.Context, moderatorID uint) ([]models.ModeratorBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ModeratorBlock
	for _, block := range m.modBlocks {
		if block.ModeratorID == moderatorID {
			out = append(out, *block)
		}
	}
	return out, nil
}

func (m *memBlocks) UserBlockExists(_ context.Context, blockerID, blockedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userBlocks[[2]uint{blockerID, blockedID}], nil
}

func (m *memBlocks) CreateUserBlock(_ context.Context, block *models.UserBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userBlocks[[2]uint{block.BlockerID, block.BlockedID}] = true
	return nil
}

func (m *memBlocks) DeleteUserBlock(_ context.Context, blockerID, blockedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{blockerID, blockedID}
	if !m.userBlocks[key] {
		return false, nil
	}
	delete(m.userBlocks, key)
	return true, nil
}

func (m *memBlocks) BlockedUserIDs(_ context.Context, blockerID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint
	for key := range m.userBlocks {
		if key[0] == blockerID {
			out = append(out, key[1])
		}
	}
	return out, nil
}

// memPosts is an in-memory repository.PostRepository seeded by tests
// through its posts slice.
type memPosts struct {
	mu    sync.Mutex
	posts []*models.Post
	likes map[[2]uint]bool
}

func newMemPosts() *memPosts {
	return &memPosts{likes: make(map[[2]uint]bool)}
}

func (m *memPosts) Create(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = uint(len(m.posts) + 1)
	m.posts = append(m.posts, post)
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (m *memPosts) List(_ context.Context, _ int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

func (m *memPosts) ListBySchools(_ context.Context, schoolIDs []uint, _ int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uint]bool, len(schoolIDs))
	for _, id := range schoolIDs {
		wanted[id] = true
	}
	var out []*models.Post
	for _, p := range m.posts {
		if p.SchoolID != nil && wanted[*p.SchoolID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPosts) ListByUser(_ context.Context, userID uint, _ int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPosts) Update(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == post.ID {
			m.posts[i] = post
			return nil
		}
	}
	return models.NewNotFoundError("Post", post.ID)
}

func (m *memPosts) UpdateStatus(_ context.Context, id uint, status models.ContentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}

func (m *memPosts) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}

func (m *memPosts) IsLiked(_ context.Context, userID, postID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[[2]uint{userID, postID}], nil
}

func (m *memPosts) Like(_ context.Context, userID, postID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[[2]uint{userID, postID}] = true
	return nil
}

func (m *memPosts) Unlike(_ context.Context, userID, postID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes, [2]uint{userID, postID})
	return nil
}

// testServerDeps bundles the fakes backing a handler test server.
type testServerDeps struct {
	userRepo   *MockUserRepository
	schoolRepo *MockSchoolRepository
	posts      *memPosts
	assigns    *memAssignments
	blocks     *memBlocks
	logins     *memLoginStates
}

// newTestServer assembles a Server over mocks with real authorization
// components, the way NewServerWithDeps would.
func newTestServer() (*Server, *testServerDeps) {
	deps := &testServerDeps{
		userRepo:   new(MockUserRepository),
		schoolRepo: new(MockSchoolRepository),
		posts:      newMemPosts(),
		assigns:    newMemAssignments(),
		blocks:     newMemBlocks(),
		logins:     newMemLoginStates(),
	}

	trees := authz.NewTreeStore(nil)
	scopes := authz.NewScopeResolver(trees, deps.assigns)
	registry := authz.NewBlockRegistry(deps.blocks, scopes)

	s := &Server{
		flags:       featureflags.NewManager(""),
		userRepo:    deps.userRepo,
		schoolRepo:  deps.schoolRepo,
		assignRepo:  deps.assigns,
		blockRepo:   deps.blocks,
		loginStates: deps.logins,
		trees:       trees,
		scopes:      scopes,
		registry:    registry,
		filter:      authz.NewVisibilityFilter(registry),
		locks:       authz.NewLockTable(),
	}
	s.authService = service.NewAuthService(
		deps.userRepo, deps.logins, authz.NewLockoutPolicy(), testJWTSecret, observability.NewAuthLogger())
	s.schoolService = service.NewSchoolService(deps.schoolRepo, trees, scopes)
	s.postService = service.NewPostService(deps.posts, trees, s.locks, s.filter)
	s.userService = service.NewUserService(deps.userRepo, deps.assigns, registry, trees)

	return s, deps
}

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"
