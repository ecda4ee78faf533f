// Package service implements business logic composing repositories and
// the authorization core.
package service

import (
	"context"
	"errors"
	"sort"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/repository"
	"campus/internal/validation"
)

// SchoolService manages the school forest. Every mutation updates both
// the database and the in-memory tree store, database first; a failed
// write leaves the snapshot untouched.
type SchoolService struct {
	schoolRepo repository.SchoolRepository
	trees      *authz.TreeStore
	scopes     *authz.ScopeResolver
}

type CreateSchoolInput struct {
	Actor       authz.Principal
	Name        string
	Slug        string
	Description string
	ParentID    *uint
}

type RenameSchoolInput struct {
	Actor       authz.Principal
	SchoolID    uint
	Name        string
	Description string
}

type ReparentSchoolInput struct {
	Actor       authz.Principal
	SchoolID    uint
	NewParentID *uint
}

func NewSchoolService(
	schoolRepo repository.SchoolRepository,
	trees *authz.TreeStore,
	scopes *authz.ScopeResolver,
) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		trees:      trees,
		scopes:     scopes,
	}
}

// LoadTree rebuilds the in-memory snapshot from the schools table.
// Called at startup and after external schema changes.
func (s *SchoolService) LoadTree(ctx context.Context) error {
	schools, err := s.schoolRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	edges := make([]authz.Edge, 0, len(schools))
	for _, school := range schools {
		edges = append(edges, authz.Edge{ID: school.ID, ParentID: school.ParentID})
	}
	s.trees.Replace(edges)
	return nil
}

// canActOn reports whether the actor may mutate the given school:
// admins anywhere, moderators only inside their current scope.
func (s *SchoolService) canActOn(ctx context.Context, actor authz.Principal, schoolID uint) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.Kind != authz.PrincipalModerator {
		return false, nil
	}
	return s.scopes.InScope(ctx, actor.UserID, schoolID)
}

func (s *SchoolService) CreateSchool(ctx context.Context, in CreateSchoolInput) (*models.School, error) {
	if !in.Actor.IsStaff() {
		return nil, models.NewForbiddenError("Only staff can create schools")
	}
	if err := validation.ValidateSchoolName(in.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidateSchoolSlug(in.Slug); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if !s.trees.Snapshot().Contains(*in.ParentID) {
			return nil, models.NewNotFoundError("School", *in.ParentID)
		}
		allowed, err := s.canActOn(ctx, in.Actor, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, models.NewForbiddenError("School is outside your scope")
		}
	} else if !in.Actor.IsAdmin() {
		// only admins create new roots
		return nil, models.NewForbiddenError("Only admins can create top-level schools")
	}

	role := models.UserRoleAdmin
	if in.Actor.Kind == authz.PrincipalModerator {
		role = models.UserRoleModerator
	}
	school := &models.School{
		Name:            in.Name,
		Slug:            in.Slug,
		Description:     in.Description,
		ParentID:        in.ParentID,
		CreatedByUserID: &in.Actor.UserID,
		CreatedByRole:   role,
	}
	if err := s.schoolRepo.Create(ctx, school); err != nil {
		return nil, err
	}
	if err := s.trees.AddNode(school.ID, school.ParentID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return school, nil
}

func (s *SchoolService) RenameSchool(ctx context.Context, in RenameSchoolInput) (*models.School, error) {
	school, err := s.schoolRepo.GetByID(ctx, in.SchoolID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canActOn(ctx, in.Actor, in.SchoolID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("School is outside your scope")
	}
	if err := validation.ValidateSchoolName(in.Name); err != nil {
		return nil, err
	}

	school.Name = in.Name
	if in.Description != "" {
		school.Description = in.Description
	}
	if err := s.schoolRepo.Update(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

// ReparentSchool moves a subtree. The new parent must not be the school
// itself or any of its descendants.
func (s *SchoolService) ReparentSchool(ctx context.Context, in ReparentSchoolInput) (*models.School, error) {
	if !in.Actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only admins can move schools")
	}
	school, err := s.schoolRepo.GetByID(ctx, in.SchoolID)
	if err != nil {
		return nil, err
	}

	if in.NewParentID != nil {
		snapshot := s.trees.Snapshot()
		if !snapshot.Contains(*in.NewParentID) {
			return nil, models.NewNotFoundError("School", *in.NewParentID)
		}
		if !snapshot.CanReparent(in.SchoolID, *in.NewParentID) {
			return nil, models.NewValidationError("Cannot move a school under itself or its own subtree")
		}
	}

	school.ParentID = in.NewParentID
	if err := s.schoolRepo.Update(ctx, school); err != nil {
		return nil, err
	}
	if err := s.trees.Reparent(in.SchoolID, in.NewParentID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return school, nil
}

// DeleteSchool removes a school. Children are re-linked to the deleted
// node's parent (or promoted to roots) and its direct posts move there
// too, so content is never orphaned.
func (s *SchoolService) DeleteSchool(ctx context.Context, actor authz.Principal, schoolID uint) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Only admins can delete schools")
	}
	school, err := s.schoolRepo.GetByID(ctx, schoolID)
	if err != nil {
		return err
	}

	heir := school.ParentID
	if err := s.schoolRepo.Delete(ctx, schoolID, heir); err != nil {
		return err
	}
	if _, err := s.trees.RemoveNode(schoolID); err != nil && !errors.Is(err, authz.ErrUnknownSchool) {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *SchoolService) GetSchool(ctx context.Context, id uint) (*models.School, error) {
	return s.schoolRepo.GetByID(ctx, id)
}

func (s *SchoolService) GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error) {
	return s.schoolRepo.GetBySlug(ctx, slug)
}

// Tree returns the full forest as nested nodes, roots sorted by id.
func (s *SchoolService) Tree(ctx context.Context) ([]*models.SchoolNode, error) {
	schools, err := s.schoolRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.SchoolNode, len(schools))
	for _, school := range schools {
		byID[school.ID] = &models.SchoolNode{School: school}
	}
	var roots []*models.SchoolNode
	for _, school := range schools {
		node := byID[school.ID]
		if school.ParentID != nil {
			if parent, ok := byID[*school.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].School.ID < roots[j].School.ID })
	return roots, nil
}
