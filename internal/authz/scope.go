package authz

import "context"

// AssignmentSource yields the root school of a moderator's delegated
// authority. Implemented by the moderator-assignment repository. A nil
// id means the moderator is currently unassigned.
type AssignmentSource interface {
	AssignedRoot(ctx context.Context, moderatorID uint) (*uint, error)
}

// ScopeResolver computes the set of schools a moderator may act on:
// their assigned root plus all transitive descendants. Scope is
// recomputed from the current tree snapshot on every call; after a
// reparent or removal the very next call reflects the new shape.
type ScopeResolver struct {
	trees       *TreeStore
	assignments AssignmentSource
}

// NewScopeResolver creates a resolver over the given tree store and
// assignment source.
func NewScopeResolver(trees *TreeStore, assignments AssignmentSource) *ScopeResolver {
	return &ScopeResolver{trees: trees, assignments: assignments}
}

// ScopeOf returns the school ids the moderator is authorized over. An
// unassigned moderator, or one whose assigned root no longer exists,
// has empty scope.
func (r *ScopeResolver) ScopeOf(ctx context.Context, moderatorID uint) (map[uint]struct{}, error) {
	root, err := r.assignments.AssignedRoot(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return map[uint]struct{}{}, nil
	}
	tree := r.trees.Snapshot()
	if !tree.Contains(*root) {
		return map[uint]struct{}{}, nil
	}
	return tree.Descendants(*root)
}

// InScope reports whether the school lies inside the moderator's
// current scope.
func (r *ScopeResolver) InScope(ctx context.Context, moderatorID, schoolID uint) (bool, error) {
	scope, err := r.ScopeOf(ctx, moderatorID)
	if err != nil {
		return false, err
	}
	_, ok := scope[schoolID]
	return ok, nil
}
