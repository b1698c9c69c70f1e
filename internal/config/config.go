package config

// Config represents the application configuration
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Audit    AuditConfig    `mapstructure:"audit"`
	LogLevel string         `mapstructure:"log_level"`
}

// DiscordConfig holds the Discord bot configuration
type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"` // optional: restrict command registration to one guild
}

// DatabaseConfig holds the SQLite database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SecurityConfig holds the credential encryption configuration.
// PreviousSecrets lets the bot decrypt blobs sealed before a key rotation;
// MasterSecret is always the encryption key.
type SecurityConfig struct {
	MasterSecret    string   `mapstructure:"master_secret"`
	PreviousSecrets []string `mapstructure:"previous_secrets"`
}

// AuditConfig holds audit log retention configuration
type AuditConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// Secrets returns all master secrets oldest first, the order the encryption
// service expects.
func (c *SecurityConfig) Secrets() []string {
	secrets := make([]string, 0, len(c.PreviousSecrets)+1)
	secrets = append(secrets, c.PreviousSecrets...)
	secrets = append(secrets, c.MasterSecret)
	return secrets
}
