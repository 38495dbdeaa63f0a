package services

import "github.com/dimitrije/tandem-api/internal/models"

// CanInvite reports whether a member holding inviterRole may grant
// requestedRole. An invite is rejected when
//
//	inviterRole >= requestedRole || inviterRole > RoleViewer
//
// so members can only invite to a role strictly less privileged than their
// own, and viewers cannot invite anyone.
func CanInvite(inviterRole, requestedRole int) bool {
	if inviterRole >= requestedRole || inviterRole > models.RoleViewer {
		return false
	}
	return true
}

// HasRole reports whether role is at least as privileged as required.
func HasRole(role, required int) bool {
	return role <= required
}
