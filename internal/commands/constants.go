package commands

// Top-level slash command names
const (
	Setup   = "setup"
	Config  = "config"
	Server  = "server"
	User    = "user"
	Admin   = "admin"
	Utility = "utility"
)

// Config subcommands
const (
	ConfigSet    = "set"
	ConfigStatus = "status"
	ConfigRemove = "remove"
)

// Server subcommands
const (
	ServerList    = "list"
	ServerInfo    = "info"
	ServerStart   = "start"
	ServerStop    = "stop"
	ServerRestart = "restart"
	ServerKill    = "kill"
	ServerCommand = "command"
	ServerLink    = "link"
	ServerUnlink  = "unlink"
)

// User subcommands
const (
	UserCreate         = "create"
	UserList           = "list"
	UserInfo           = "info"
	UserUpdateEmail    = "update-email"
	UserUpdatePassword = "update-password"
	UserDelete         = "delete"
)

// Admin subcommands
const (
	AdminStatus      = "status"
	AdminUsers       = "users"
	AdminAudit       = "audit"
	AdminPermissions = "permissions"
	AdminReset       = "reset"
)

// Utility subcommands
const (
	UtilityPing    = "ping"
	UtilityCleanup = "cleanup"
)
