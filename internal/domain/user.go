package domain

import (
	"context"
	"slices"
	"time"
)

// RoleAdmin is the role allowed to act on other members' inscriptions.
const RoleAdmin = "admin"

// UserSnapshot is a read-only view of a member owned by the user directory.
// swagger:model UserSnapshot
type UserSnapshot struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// UserDirectory is the read-only identity lookup.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*UserSnapshot, error)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the actor carries the given role.
func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated actor.
type TokenVerifier interface {
	Verify(token string) (*Actor, error)
}

// Authorizer decides whether an actor may perform privileged operations.
type Authorizer interface {
	// CanManageInscription reports whether actor may cancel ins.
	CanManageInscription(actor Actor, ins *Inscription) bool
	// CanResync reports whether actor may rebuild derived inscription views.
	CanResync(actor Actor) bool
}
