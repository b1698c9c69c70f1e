package models

import "time"

// ServerLink caches a panel server linked by a user. Rows are derived from
// the panel API and safe to drop and repopulate; they are not a source of
// truth.
type ServerLink struct {
	ID               int64
	GuildID          string
	UserID           string
	ServerIdentifier string
	FriendlyName     string
	LastSeenAt       time.Time
}
