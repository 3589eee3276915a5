package auth

import "membershipevents/internal/domain"

type rolePolicy struct{}

// NewRolePolicy returns the Authorizer used by the API: members manage their
// own inscriptions and admins manage everyone's and may resync.
func NewRolePolicy() domain.Authorizer {
	return rolePolicy{}
}

func (rolePolicy) CanManageInscription(actor domain.Actor, ins *domain.Inscription) bool {
	if ins == nil || actor.UserID == "" {
		return false
	}
	return actor.UserID == ins.UserID || actor.HasRole(domain.RoleAdmin)
}

func (rolePolicy) CanResync(actor domain.Actor) bool {
	return actor.HasRole(domain.RoleAdmin)
}
