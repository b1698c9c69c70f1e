// Package permissions is the single authorization decision point. Every
// privileged command goes through Authorize; handlers never check roles or
// capability flags themselves.
package permissions

import (
	"ptero-discord-admin/internal/models"
)

// Capability is a named permission grantable per user.
type Capability string

const (
	// ManageServers allows power actions, console commands and linking
	ManageServers Capability = "manage_servers"
	// CreateUsers allows panel account CRUD
	CreateUsers Capability = "create_users"
	// ManagePermissions allows changing other users' capability flags
	ManagePermissions Capability = "manage_permissions"
	// ViewAudit allows querying the audit log
	ViewAudit Capability = "view_audit"
	// ResetUsers allows clearing another user's credentials and links
	ResetUsers Capability = "reset_users"
)

// Decision is the result of an authorization check.
type Decision int

const (
	// Deny rejects the action
	Deny Decision = iota
	// Allow permits the action
	Allow
)

// Actor describes the invoking guild member as seen by the chat platform.
type Actor struct {
	UserID  string
	RoleIDs []string
	// IsAdministrator reports the platform-level Administrator permission,
	// the fallback when no admin role is configured.
	IsAdministrator bool
}

// Authorize decides whether the actor may perform an action requiring the
// given capability. Rule precedence, first match wins:
//
//  1. Actor holds the guild's configured admin role — or is a platform
//     administrator when no admin role is configured — allow everything.
//  2. Actor's own UserConfig grants the capability.
//  3. Deny.
//
// guildConfig and userConfig may be nil when not yet created. max_servers is
// a counting quota, not a capability, and is enforced by the server link
// service.
func Authorize(actor Actor, guildConfig *models.GuildConfig, userConfig *models.UserConfig, capability Capability) Decision {
	if isGuildAdmin(actor, guildConfig) {
		return Allow
	}

	if userConfig != nil && userConfig.UserID == actor.UserID {
		switch capability {
		case ManageServers:
			if userConfig.CanManageServers {
				return Allow
			}
		case CreateUsers:
			if userConfig.CanCreateUsers {
				return Allow
			}
		}
	}

	return Deny
}

// isGuildAdmin applies rule 1
func isGuildAdmin(actor Actor, guildConfig *models.GuildConfig) bool {
	if guildConfig == nil || guildConfig.AdminRoleID == "" {
		return actor.IsAdministrator
	}

	for _, roleID := range actor.RoleIDs {
		if roleID == guildConfig.AdminRoleID {
			return true
		}
	}
	return false
}
