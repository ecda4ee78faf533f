package authz

import "campus/internal/models"

// PrincipalKind tags the role variant of a Principal.
type PrincipalKind string

const (
	// PrincipalAnonymous is an unauthenticated viewer.
	PrincipalAnonymous PrincipalKind = "anonymous"
	// PrincipalUser is a regular authenticated account.
	PrincipalUser PrincipalKind = "user"
	// PrincipalModerator is a delegated school moderator.
	PrincipalModerator PrincipalKind = "moderator"
	// PrincipalAdmin is a platform administrator.
	PrincipalAdmin PrincipalKind = "admin"
)

// Principal identifies who is performing an operation. It replaces
// ad-hoc role booleans at every decision point: visibility, scope and
// lock checks all take a Principal and branch on its kind exactly once.
type Principal struct {
	Kind   PrincipalKind
	UserID uint // zero when anonymous
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

// UserPrincipal returns a regular-user principal.
func UserPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalUser, UserID: id}
}

// ModeratorPrincipal returns a moderator principal. The moderator's
// scope root is resolved on demand through the ScopeResolver, never
// carried on the principal, so a reassignment takes effect immediately.
func ModeratorPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalModerator, UserID: id}
}

// AdminPrincipal returns a platform-admin principal.
func AdminPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalAdmin, UserID: id}
}

// PrincipalFor maps a persisted user to its principal.
func PrincipalFor(u *models.User) Principal {
	if u == nil {
		return Anonymous()
	}
	switch u.Role {
	case models.UserRoleAdmin:
		return AdminPrincipal(u.ID)
	case models.UserRoleModerator:
		return ModeratorPrincipal(u.ID)
	default:
		return UserPrincipal(u.ID)
	}
}

// IsAdmin reports whether the principal is a platform admin.
func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalAdmin
}

// IsStaff reports whether the principal is an admin or a moderator.
func (p Principal) IsStaff() bool {
	return p.Kind == PrincipalAdmin || p.Kind == PrincipalModerator
}

// IsAnonymous reports whether the principal is unauthenticated.
func (p Principal) IsAnonymous() bool {
	return p.Kind == PrincipalAnonymous
}

// Owns reports whether the principal is the given owner.
func (p Principal) Owns(ownerID uint) bool {
	return !p.IsAnonymous() && p.UserID == ownerID
}
