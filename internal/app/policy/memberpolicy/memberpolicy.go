// Package memberpolicy holds the pure permission predicates for member
// management. Every mutating handler re-runs these server-side; nothing
// here trusts role or permission flags supplied by the caller.
//
// Authorization rules:
//   - Admins can edit and remove anyone in their club except themselves.
//   - Moderators can edit and remove plain members only, never themselves.
//   - Members cannot manage other members.
//   - Invite and edit role menus are bounded by the actor's own role, so
//     escalation above the actor is impossible.
package memberpolicy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// CanEditMember reports whether the actor may change the target's role.
// Self-edit through this path is always denied, including for admins.
func CanEditMember(actorRole string, actorID primitive.ObjectID, target *models.User) bool {
	if target == nil || target.ID == actorID {
		return false
	}
	switch actorRole {
	case "admin":
		return true
	case "moderator":
		return target.Role == "member"
	default:
		return false
	}
}

// CanRemoveMember reports whether the actor may remove the target from
// the club. Same rule shape as CanEditMember.
func CanRemoveMember(actorRole string, actorID primitive.ObjectID, target *models.User) bool {
	return CanEditMember(actorRole, actorID, target)
}

// AvailableInviteRoles returns the roles the actor may put on a new
// invitation.
func AvailableInviteRoles(actorRole string) []string {
	if actorRole == "admin" {
		return []string{"member", "moderator", "admin"}
	}
	return []string{"member"}
}

// EditableRoles returns the roles the actor may assign when editing an
// existing member.
func EditableRoles(actorRole string) []string {
	switch actorRole {
	case "admin":
		return []string{"member", "moderator", "admin"}
	case "moderator":
		return []string{"member", "moderator"}
	default:
		return []string{"member"}
	}
}

// RoleAllowed reports whether role appears in allowed.
func RoleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
