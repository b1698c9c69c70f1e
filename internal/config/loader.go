package config

import (
	"strings"

	"github.com/spf13/viper"

	"ptero-discord-admin/internal/constants"
	apperrors "ptero-discord-admin/internal/errors"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PATH", "ptero-bot.db")
	v.SetDefault("AUDIT_RETENTION_DAYS", constants.DefaultRetentionDays)

	// Define environment variables
	v.BindEnv("DISCORD_TOKEN")
	v.BindEnv("DISCORD_GUILD_ID")
	v.BindEnv("MASTER_SECRET")
	v.BindEnv("MASTER_SECRET_PREVIOUS")
	v.BindEnv("DB_PATH")
	v.BindEnv("AUDIT_RETENTION_DAYS")
	v.BindEnv("LOG_LEVEL")

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		Discord: DiscordConfig{
			Token:   strings.TrimSpace(v.GetString("DISCORD_TOKEN")),
			GuildID: strings.TrimSpace(v.GetString("DISCORD_GUILD_ID")),
		},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("DB_PATH")),
		},
		Security: SecurityConfig{
			MasterSecret: strings.TrimSpace(v.GetString("MASTER_SECRET")),
		},
		Audit: AuditConfig{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}

	// Parse previous master secrets (comma-separated, oldest first)
	previous := v.GetString("MASTER_SECRET_PREVIOUS")
	if previous != "" {
		for _, s := range strings.Split(previous, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Security.PreviousSecrets = append(cfg.Security.PreviousSecrets, s)
			}
		}
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Discord.Token == "" {
		return &apperrors.ConfigError{Section: "discord", Message: "DISCORD_TOKEN is required"}
	}

	if cfg.Security.MasterSecret == "" {
		return &apperrors.ConfigError{Section: "security", Message: "MASTER_SECRET is required"}
	}

	if cfg.Database.Path == "" {
		return &apperrors.ConfigError{Section: "database", Message: "DB_PATH is required"}
	}

	if cfg.Audit.RetentionDays < 1 {
		return &apperrors.ConfigError{Section: "audit", Message: "AUDIT_RETENTION_DAYS must be at least 1"}
	}

	return nil
}
