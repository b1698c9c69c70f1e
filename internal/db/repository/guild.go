package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ptero-discord-admin/internal/models"
)

// GuildRepository handles guild configuration data access
type GuildRepository struct {
	db *sql.DB
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *sql.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

// Upsert creates the guild row or updates its admin role
func (r *GuildRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	query := `
		INSERT INTO guild_configs (guild_id, admin_role_id)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			admin_role_id = excluded.admin_role_id,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, cfg.GuildID, cfg.AdminRoleID); err != nil {
		return fmt.Errorf("failed to upsert guild config: %w", err)
	}
	return nil
}

// Get returns the guild configuration, or nil when the guild has never run setup
func (r *GuildRepository) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, admin_role_id, created_at, updated_at
		FROM guild_configs
		WHERE guild_id = ?
	`

	cfg := &models.GuildConfig{}
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.AdminRoleID,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}
	return cfg, nil
}

// CountUsers returns the number of configured users in a guild
func (r *GuildRepository) CountUsers(ctx context.Context, guildID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_configs WHERE guild_id = ?`, guildID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
