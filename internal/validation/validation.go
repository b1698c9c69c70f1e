package validation

import (
	"net/url"
	"strings"

	"ptero-discord-admin/internal/constants"
	apperrors "ptero-discord-admin/internal/errors"
)

// ValidatePanelURL checks that a panel URL is a well-formed absolute http(s)
// URL and returns it normalized without a trailing slash.
func ValidatePanelURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &apperrors.ValidationError{Field: "panel_url", Message: "must not be empty"}
	}
	if len(raw) > constants.MaxPanelURLLength {
		return "", &apperrors.ValidationError{Field: "panel_url", Message: "too long"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &apperrors.ValidationError{Field: "panel_url", Message: "not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &apperrors.ValidationError{Field: "panel_url", Message: "must start with http:// or https://"}
	}
	if u.Host == "" {
		return "", &apperrors.ValidationError{Field: "panel_url", Message: "missing host"}
	}

	return strings.TrimRight(raw, "/"), nil
}

// ValidateAPIKey checks that an API key is present
func ValidateAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return &apperrors.ValidationError{Field: "api_key", Message: "must not be empty"}
	}
	return nil
}

// ValidateUsername validates a panel account username
func ValidateUsername(username string) error {
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return &apperrors.ValidationError{
			Field:   "username",
			Message: "must be between 3 and 32 characters",
		}
	}

	for _, r := range username {
		if !isValidUsernameChar(r) {
			return &apperrors.ValidationError{
				Field:   "username",
				Message: "can only contain letters, numbers, and underscores",
			}
		}
	}
	return nil
}

// ValidateEmail performs a light structural check on a panel account email
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return &apperrors.ValidationError{Field: "email", Message: "not a valid email address"}
	}
	return nil
}

// ValidatePassword validates a panel account password
func ValidatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return &apperrors.ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters",
		}
	}
	return nil
}

// ValidateMaxServers validates an admin-supplied server quota
func ValidateMaxServers(n int) error {
	if n < 0 {
		return &apperrors.ValidationError{Field: "max_servers", Message: "cannot be negative"}
	}
	if n > constants.MaxServersCeiling {
		return &apperrors.ValidationError{Field: "max_servers", Message: "exceeds the allowed ceiling"}
	}
	return nil
}

// isValidUsernameChar checks if a character is valid for usernames
func isValidUsernameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}

// RedactURL reduces a URL to its hostname for audit details. Invalid input
// yields an empty string rather than leaking the raw value.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
