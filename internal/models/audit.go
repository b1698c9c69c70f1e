package models

import "time"

// AuditEntry is an immutable record of one privileged action's attempt and
// outcome. Entries are append-only and removed only by retention cleanup.
type AuditEntry struct {
	ID        int64
	GuildID   string
	UserID    string
	Action    string
	Target    string
	Result    string // ResultSuccess or ResultFailure
	Detail    string // redacted free text; never contains credentials
	Timestamp time.Time
}

// Audit result constants
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Audit action constants
const (
	ActionGuildSetup         = "guild_setup"
	ActionCredentialsSet     = "credentials_set"
	ActionCredentialsCleared = "credentials_cleared"
	ActionPermissionsUpdate  = "permissions_update"
	ActionUserReset          = "user_reset"
	ActionAuthorizationDeny  = "authorization_deny"
	ActionServerPower        = "server_power"
	ActionServerCommand      = "server_command"
	ActionServerLink         = "server_link"
	ActionServerUnlink       = "server_unlink"
	ActionPanelUserCreate    = "panel_user_create"
	ActionPanelUserUpdate    = "panel_user_update"
	ActionPanelUserDelete    = "panel_user_delete"
	ActionRetentionCleanup   = "retention_cleanup"
)

// AuditFilter narrows an audit query. Zero values mean "no constraint".
type AuditFilter struct {
	UserID string
	Action string
	Since  time.Time
	Until  time.Time
}
