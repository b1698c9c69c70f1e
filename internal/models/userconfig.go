package models

import "time"

// UserConfig holds one user's encrypted panel credentials and capability
// flags, scoped to a guild. Credential fields are AEAD ciphertext blobs and
// must never be persisted or logged in plaintext.
type UserConfig struct {
	GuildID           string
	UserID            string
	EncryptedPanelURL []byte
	EncryptedAPIKey   []byte
	CanManageServers  bool
	CanCreateUsers    bool
	MaxServers        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PermissionUpdate describes an admin-initiated change to a user's
// capability flags. Nil fields are left untouched.
type PermissionUpdate struct {
	CanManageServers *bool
	CanCreateUsers   *bool
	MaxServers       *int
}
