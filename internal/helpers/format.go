package helpers

import (
	"fmt"

	"ptero-discord-admin/internal/constants"
)

// FormatBytes renders a byte count for display
func FormatBytes(bytes int64) string {
	switch {
	case bytes >= constants.BytesInGB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(constants.BytesInGB))
	case bytes >= constants.BytesInMB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(constants.BytesInMB))
	case bytes >= 1024:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatMegabytes renders a panel limit given in megabytes; zero means
// unlimited.
func FormatMegabytes(mb int) string {
	if mb == 0 {
		return "unlimited"
	}
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", float64(mb)/1024)
	}
	return fmt.Sprintf("%d MB", mb)
}

// FormatBool renders a capability flag for display
func FormatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
