package constants

const (
	// User validation constants
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8

	// Credential validation constants
	MaxPanelURLLength = 255

	// Permission defaults for newly configured users
	DefaultCanManageServers = true
	DefaultCanCreateUsers   = false
	DefaultMaxServers       = 10
	MaxServersCeiling       = 100

	// Network constants
	DefaultTimeout          = 30
	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = 2
	DefaultRetryMaxWaitTime = 20

	// Cache constants
	CacheExpiration      = 5  // minutes
	CacheCleanupInterval = 10 // minutes

	// Audit constants
	DefaultAuditQueryLimit = 20
	MaxAuditQueryLimit     = 50
	DefaultRetentionDays   = 90

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
	BytesInGB       = 1024 * 1024 * 1024
	BytesInMB       = 1024 * 1024
)
