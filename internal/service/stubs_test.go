package service

import (
	"context"
	"sync"

	"campus/internal/models"
	"campus/internal/repository"
)

func uintPtr(v uint) *uint { return &v }

// schoolRepoStub is a stub for repository.SchoolRepository.
type schoolRepoStub struct {
	createFn    func(context.Context, *models.School) error
	getByIDFn   func(context.Context, uint) (*models.School, error)
	getBySlugFn func(context.Context, string) (*models.School, error)
	listAllFn   func(context.Context) ([]models.School, error)
	updateFn    func(context.Context, *models.School) error
	deleteFn    func(context.Context, uint, *uint) error
}

func (s *schoolRepoStub) Create(ctx context.Context, school *models.School) error {
	return s.createFn(ctx, school)
}
func (s *schoolRepoStub) GetByID(ctx context.Context, id uint) (*models.School, error) {
	return s.getByIDFn(ctx, id)
}
func (s *schoolRepoStub) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *schoolRepoStub) ListAll(ctx context.Context) ([]models.School, error) {
	return s.listAllFn(ctx)
}
func (s *schoolRepoStub) Update(ctx context.Context, school *models.School) error {
	return s.updateFn(ctx, school)
}
func (s *schoolRepoStub) Delete(ctx context.Context, id uint, heir *uint) error {
	return s.deleteFn(ctx, id, heir)
}

func noopSchoolRepo() *schoolRepoStub {
	nextID := uint(100)
	return &schoolRepoStub{
		createFn: func(_ context.Context, school *models.School) error {
			nextID++
			school.ID = nextID
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.School, error) {
			return &models.School{ID: id}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.School, error) {
			return &models.School{ID: 1, Slug: slug}, nil
		},
		listAllFn: func(_ context.Context) ([]models.School, error) { return nil, nil },
		updateFn:  func(_ context.Context, _ *models.School) error { return nil },
		deleteFn:  func(_ context.Context, _ uint, _ *uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listFn          func(context.Context, int) ([]*models.Post, error)
	listBySchoolsFn func(context.Context, []uint, int) ([]*models.Post, error)
	listByUserFn    func(context.Context, uint, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	updateStatusFn  func(context.Context, uint, models.ContentStatus) error
	deleteFn        func(context.Context, uint) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	likeFn          func(context.Context, uint, uint) error
	unlikeFn        func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listFn(ctx, limit)
}
func (s *postRepoStub) ListBySchools(ctx context.Context, schoolIDs []uint, limit int) ([]*models.Post, error) {
	return s.listBySchoolsFn(ctx, schoolIDs, limit)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ContentStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context, _ int) ([]*models.Post, error) { return nil, nil },
		listBySchoolsFn: func(_ context.Context, _ []uint, _ int) ([]*models.Post, error) { return nil, nil },
		listByUserFn:    func(_ context.Context, _ uint, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn:  func(_ context.Context, _ uint, _ models.ContentStatus) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:          func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:        func(_ context.Context, _, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listByPostFn   func(context.Context, uint) ([]*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	updateStatusFn func(context.Context, uint, models.ContentStatus) error
	deleteFn       func(context.Context, uint) error
	likeFn         func(context.Context, uint, uint) error
	unlikeFn       func(context.Context, uint, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ContentStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Like(ctx context.Context, userID, commentID uint) error {
	return s.likeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Unlike(ctx context.Context, userID, commentID uint) error {
	return s.unlikeFn(ctx, userID, commentID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:   func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.ContentStatus) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		likeFn:         func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:       func(_ context.Context, _, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	listByRoleFn    func(context.Context, models.UserRole) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return s.listByRoleFn(ctx, role)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		listByRoleFn:    func(_ context.Context, _ models.UserRole) ([]models.User, error) { return nil, nil },
	}
}

// assignRepoStub is a stub for repository.AssignmentRepository. The
// roots map doubles as the authz.AssignmentSource for scope tests.
type assignRepoStub struct {
	mu    sync.Mutex
	roots map[uint]*uint
}

func newAssignRepoStub() *assignRepoStub {
	return &assignRepoStub{roots: map[uint]*uint{}}
}

func (s *assignRepoStub) AssignedRoot(_ context.Context, moderatorID uint) (*uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roots[moderatorID], nil
}

func (s *assignRepoStub) Upsert(_ context.Context, moderatorID uint, schoolID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[moderatorID] = schoolID
	return nil
}

func (s *assignRepoStub) GetByModerator(_ context.Context, moderatorID uint) (*models.ModeratorAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.ModeratorAssignment{ModeratorID: moderatorID, SchoolID: s.roots[moderatorID]}, nil
}

func (s *assignRepoStub) ListBySchool(_ context.Context, _ uint) ([]models.ModeratorAssignment, error) {
	return nil, nil
}

func (s *assignRepoStub) Delete(_ context.Context, moderatorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roots, moderatorID)
	return nil
}

type modBlockKey struct {
	moderatorID   uint
	blockedUserID uint
	schoolID      uint
}

type userBlockKey struct {
	blockerID uint
	blockedID uint
}

// memBlockRepo is an in-memory repository.BlockRepository.
type memBlockRepo struct {
	mu         sync.Mutex
	modBlocks  map[modBlockKey]models.ModeratorBlock
	userBlocks map[userBlockKey]struct{}
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{
		modBlocks:  map[modBlockKey]models.ModeratorBlock{},
		userBlocks: map[userBlockKey]struct{}{},
	}
}

func (m *memBlockRepo) ModeratorBlockExists(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.modBlocks[modBlockKey{moderatorID, blockedUserID, schoolID}]
	return ok, nil
}

func (m *memBlockRepo) CreateModeratorBlock(_ context.Context, block *models.ModeratorBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modBlocks[modBlockKey{block.ModeratorID, block.BlockedUserID, block.SchoolID}] = *block
	return nil
}

func (m *memBlockRepo) DeleteModeratorBlock(_ context.Context, moderatorID, blockedUserID, schoolID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := modBlockKey{moderatorID, blockedUserID, schoolID}
	if _, ok := m.modBlocks[key]; !ok {
		return false, nil
	}
	delete(m.modBlocks, key)
	return true, nil
}

func (m *memBlockRepo) ModeratorsBlocking(_ context.Context, userID, schoolID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint
	for key := range m.modBlocks {
		if key.blockedUserID == userID && key.schoolID == schoolID {
			out = append(out, key.moderatorID)
		}
	}
	return out, nil
}

func (m *memBlockRepo) ModeratorBlocksForUsers(_ context.Context, userIDs []uint) ([]models.ModeratorBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[uint]struct{}{}
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var out []models.ModeratorBlock
	for key, block := range m.modBlocks {
		if _, ok := want[key.blockedUserID]; ok {
			out = append(out, block)
		}
	}
	return out, nil
}

func (m *memBlockRepo) ListModeratorBlocks(_ context.Context, moderatorID uint) ([]models.ModeratorBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ModeratorBlock
	for key, block := range m.modBlocks {
		if key.moderatorID == moderatorID {
			out = append(out, block)
		}
	}
	return out, nil
}

func (m *memBlockRepo) UserBlockExists(_ context.Context, blockerID, blockedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.userBlocks[userBlockKey{blockerID, blockedID}]
	return ok, nil
}

func (m *memBlockRepo) CreateUserBlock(_ context.Context, block *models.UserBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userBlocks[userBlockKey{block.BlockerID, block.BlockedID}] = struct{}{}
	return nil
}

func (m *memBlockRepo) DeleteUserBlock(_ context.Context, blockerID, blockedID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userBlockKey{blockerID, blockedID}
	if _, ok := m.userBlocks[key]; !ok {
		return false, nil
	}
	delete(m.userBlocks, key)
	return true, nil
}

func (m *memBlockRepo) BlockedUserIDs(_ context.Context, blockerID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint
	for key := range m.userBlocks {
		if key.blockerID == blockerID {
			out = append(out, key.blockedID)
		}
	}
	return out, nil
}

// memLoginStates is an in-memory repository.LoginStateRepository.
type memLoginStates struct {
	mu     sync.Mutex
	states map[uint]*models.LoginState
}

func newMemLoginStates() *memLoginStates {
	return &memLoginStates{states: map[uint]*models.LoginState{}}
}

func (m *memLoginStates) Get(_ context.Context, userID uint) (*models.LoginState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		copied := *st
		return &copied, nil
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
	copied := *st
	return &copied, nil
}

var (
	_ repository.BlockRepository      = (*memBlockRepo)(nil)
	_ repository.LoginStateRepository = (*memLoginStates)(nil)
	_ repository.AssignmentRepository = (*assignRepoStub)(nil)
)
