package errors

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a user has no stored panel credentials.
var ErrNotConfigured = errors.New("panel credentials not configured")

// ErrDecryption is returned when a ciphertext blob cannot be authenticated
// or was produced under an unknown key.
var ErrDecryption = errors.New("decryption failed")

// ValidationError represents an error when input validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// AuthorizationError represents a denied permission check
type AuthorizationError struct {
	UserID     string
	GuildID    string
	Capability string
}

// Error returns the error message
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s denied capability %s in guild %s", e.UserID, e.Capability, e.GuildID)
}

// PanelAPIError represents an error from the Pterodactyl panel API
type PanelAPIError struct {
	Operation string
	Status    int
	Message   string
}

// Error returns the error message
func (e *PanelAPIError) Error() string {
	return fmt.Sprintf("panel API error during %s (status %d): %s", e.Operation, e.Status, e.Message)
}

// Retryable reports whether the request may be retried. Network failures
// carry status 0; 5xx responses are transient panel-side faults.
func (e *PanelAPIError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

// AuditWriteError wraps a failed audit log write. It is reported to the
// invoking user as a secondary warning and never replaces the primary
// command outcome.
type AuditWriteError struct {
	Action string
	Err    error
}

// Error returns the error message
func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit write failed for action %s: %v", e.Action, e.Err)
}

// Unwrap returns the underlying storage error
func (e *AuditWriteError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}
