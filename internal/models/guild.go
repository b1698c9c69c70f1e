package models

import "time"

// GuildConfig holds per-guild bot configuration. A guild row is created by
// the first /setup and is never hard-deleted; a reset clears AdminRoleID.
type GuildConfig struct {
	GuildID     string
	AdminRoleID string // empty means "fall back to Discord Administrator permission"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
