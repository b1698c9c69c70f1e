package permissions

import (
	"testing"

	"ptero-discord-admin/internal/models"
)

func TestAuthorize(t *testing.T) {
	guildWithRole := &models.GuildConfig{GuildID: "g1", AdminRoleID: "role-admin"}

	ownConfig := func(manage, create bool) *models.UserConfig {
		return &models.UserConfig{
			GuildID:          "g1",
			UserID:           "u1",
			CanManageServers: manage,
			CanCreateUsers:   create,
		}
	}

	tests := []struct {
		name       string
		actor      Actor
		guild      *models.GuildConfig
		user       *models.UserConfig
		capability Capability
		want       Decision
	}{
		{
			name:       "platform admin with no guild config gets everything",
			actor:      Actor{UserID: "u1", IsAdministrator: true},
			capability: ManagePermissions,
			want:       Allow,
		},
		{
			name:       "admin role holder gets everything",
			actor:      Actor{UserID: "u1", RoleIDs: []string{"other", "role-admin"}},
			guild:      guildWithRole,
			capability: ResetUsers,
			want:       Allow,
		},
		{
			name:       "platform admin loses fallback once an admin role is configured",
			actor:      Actor{UserID: "u1", IsAdministrator: true},
			guild:      guildWithRole,
			capability: ManagePermissions,
			want:       Deny,
		},
		{
			name:       "admin role beats missing capability flag",
			actor:      Actor{UserID: "u1", RoleIDs: []string{"role-admin"}},
			guild:      guildWithRole,
			user:       ownConfig(false, false),
			capability: ManageServers,
			want:       Allow,
		},
		{
			name:       "own config grants manage_servers",
			actor:      Actor{UserID: "u1"},
			guild:      guildWithRole,
			user:       ownConfig(true, false),
			capability: ManageServers,
			want:       Allow,
		},
		{
			name:       "own config grants create_users",
			actor:      Actor{UserID: "u1"},
			user:       ownConfig(false, true),
			capability: CreateUsers,
			want:       Allow,
		},
		{
			name:       "capability flag does not leak into admin capabilities",
			actor:      Actor{UserID: "u1"},
			user:       ownConfig(true, true),
			capability: ManagePermissions,
			want:       Deny,
		},
		{
			name:       "someone else's config grants nothing",
			actor:      Actor{UserID: "u2"},
			user:       ownConfig(true, true),
			capability: ManageServers,
			want:       Deny,
		},
		{
			name:       "no config and no role denies",
			actor:      Actor{UserID: "u1"},
			capability: ManageServers,
			want:       Deny,
		},
		{
			name:       "disabled flag denies",
			actor:      Actor{UserID: "u1"},
			user:       ownConfig(false, false),
			capability: ManageServers,
			want:       Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.actor, tt.guild, tt.user, tt.capability)
			if got != tt.want {
				t.Errorf("Authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewAuditIsAdminOnly(t *testing.T) {
	user := &models.UserConfig{UserID: "u1", CanManageServers: true, CanCreateUsers: true}

	if got := Authorize(Actor{UserID: "u1"}, nil, user, ViewAudit); got != Deny {
		t.Errorf("expected Deny for non-admin view_audit, got %v", got)
	}
	if got := Authorize(Actor{UserID: "u1", IsAdministrator: true}, nil, user, ViewAudit); got != Allow {
		t.Errorf("expected Allow for admin view_audit, got %v", got)
	}
}
