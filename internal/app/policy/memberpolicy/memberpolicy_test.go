package memberpolicy_test

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pacerhub/pacerhub/internal/app/policy/memberpolicy"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

func TestCanEditMember(t *testing.T) {
	actorID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	target := func(id primitive.ObjectID, role string) *models.User {
		return &models.User{ID: id, Role: role}
	}

	tests := []struct {
		name       string
		actorRole  string
		targetRole string
		targetID   primitive.ObjectID
		want       bool
	}{
		{"admin edits member", "admin", "member", otherID, true},
		{"admin edits moderator", "admin", "moderator", otherID, true},
		{"admin edits admin", "admin", "admin", otherID, true},
		{"admin edits self", "admin", "admin", actorID, false},

		{"moderator edits member", "moderator", "member", otherID, true},
		{"moderator edits moderator", "moderator", "moderator", otherID, false},
		{"moderator edits admin", "moderator", "admin", otherID, false},
		{"moderator edits self", "moderator", "moderator", actorID, false},

		{"member edits member", "member", "member", otherID, false},
		{"member edits moderator", "member", "moderator", otherID, false},
		{"member edits admin", "member", "admin", otherID, false},
		{"member edits self", "member", "member", actorID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := memberpolicy.CanEditMember(tt.actorRole, actorID, target(tt.targetID, tt.targetRole))
			if got != tt.want {
				t.Errorf("CanEditMember(%s, %s) = %v, want %v", tt.actorRole, tt.targetRole, got, tt.want)
			}

			// Removal follows the same table.
			gotRemove := memberpolicy.CanRemoveMember(tt.actorRole, actorID, target(tt.targetID, tt.targetRole))
			if gotRemove != tt.want {
				t.Errorf("CanRemoveMember(%s, %s) = %v, want %v", tt.actorRole, tt.targetRole, gotRemove, tt.want)
			}
		})
	}
}

func TestCanEditMember_NilTarget(t *testing.T) {
	if memberpolicy.CanEditMember("admin", primitive.NewObjectID(), nil) {
		t.Error("expected false for nil target")
	}
}

func TestAvailableInviteRoles(t *testing.T) {
	tests := []struct {
		actorRole string
		want      []string
	}{
		{"admin", []string{"member", "moderator", "admin"}},
		{"moderator", []string{"member"}},
		{"member", []string{"member"}},
		{"visitor", []string{"member"}},
	}

	for _, tt := range tests {
		got := memberpolicy.AvailableInviteRoles(tt.actorRole)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("AvailableInviteRoles(%s) = %v, want %v", tt.actorRole, got, tt.want)
		}
	}
}

func TestEditableRoles(t *testing.T) {
	tests := []struct {
		actorRole string
		want      []string
	}{
		{"admin", []string{"member", "moderator", "admin"}},
		{"moderator", []string{"member", "moderator"}},
		{"member", []string{"member"}},
		{"visitor", []string{"member"}},
	}

	for _, tt := range tests {
		got := memberpolicy.EditableRoles(tt.actorRole)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EditableRoles(%s) = %v, want %v", tt.actorRole, got, tt.want)
		}
	}
}

func TestRoleAllowed(t *testing.T) {
	allowed := []string{"member", "moderator"}
	if !memberpolicy.RoleAllowed("member", allowed) {
		t.Error("member should be allowed")
	}
	if memberpolicy.RoleAllowed("admin", allowed) {
		t.Error("admin should not be allowed")
	}
}
