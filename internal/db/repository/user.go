package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ptero-discord-admin/internal/models"
)

// UserRepository handles user configuration data access
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertCredentials atomically writes both encrypted credential fields for a
// (guild, user) key. Capability flags keep their stored values on update and
// get defaults on first insert.
func (r *UserRepository) UpsertCredentials(ctx context.Context, cfg *models.UserConfig) error {
	query := `
		INSERT INTO user_configs (
			guild_id, user_id, encrypted_panel_url, encrypted_api_key,
			can_manage_servers, can_create_users, max_servers
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			encrypted_panel_url = excluded.encrypted_panel_url,
			encrypted_api_key = excluded.encrypted_api_key,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		cfg.GuildID,
		cfg.UserID,
		cfg.EncryptedPanelURL,
		cfg.EncryptedAPIKey,
		cfg.CanManageServers,
		cfg.CanCreateUsers,
		cfg.MaxServers,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user config: %w", err)
	}
	return nil
}

// Get returns a user's configuration, or nil when none exists
func (r *UserRepository) Get(ctx context.Context, guildID, userID string) (*models.UserConfig, error) {
	query := `
		SELECT guild_id, user_id, encrypted_panel_url, encrypted_api_key,
		       can_manage_servers, can_create_users, max_servers,
		       created_at, updated_at
		FROM user_configs
		WHERE guild_id = ? AND user_id = ?
	`

	cfg := &models.UserConfig{}
	err := r.db.QueryRowContext(ctx, query, guildID, userID).Scan(
		&cfg.GuildID,
		&cfg.UserID,
		&cfg.EncryptedPanelURL,
		&cfg.EncryptedAPIKey,
		&cfg.CanManageServers,
		&cfg.CanCreateUsers,
		&cfg.MaxServers,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}
	return cfg, nil
}

// ListByGuild returns all configured users in a guild
func (r *UserRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.UserConfig, error) {
	query := `
		SELECT guild_id, user_id, encrypted_panel_url, encrypted_api_key,
		       can_manage_servers, can_create_users, max_servers,
		       created_at, updated_at
		FROM user_configs
		WHERE guild_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.UserConfig
	for rows.Next() {
		cfg := &models.UserConfig{}
		err := rows.Scan(
			&cfg.GuildID,
			&cfg.UserID,
			&cfg.EncryptedPanelURL,
			&cfg.EncryptedAPIKey,
			&cfg.CanManageServers,
			&cfg.CanCreateUsers,
			&cfg.MaxServers,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// UpdatePermissions applies an admin permission change. Nil fields are left
// untouched. It reports whether a row was updated.
func (r *UserRepository) UpdatePermissions(ctx context.Context, guildID, userID string, update models.PermissionUpdate) (bool, error) {
	query := `
		UPDATE user_configs SET
			can_manage_servers = COALESCE(?, can_manage_servers),
			can_create_users = COALESCE(?, can_create_users),
			max_servers = COALESCE(?, max_servers),
			updated_at = CURRENT_TIMESTAMP
		WHERE guild_id = ? AND user_id = ?
	`

	res, err := r.db.ExecContext(ctx, query,
		boolArg(update.CanManageServers),
		boolArg(update.CanCreateUsers),
		intArg(update.MaxServers),
		guildID,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update permissions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a user's configuration. Deleting an absent row is not an error.
func (r *UserRepository) Delete(ctx context.Context, guildID, userID string) error {
	query := `DELETE FROM user_configs WHERE guild_id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete user config: %w", err)
	}
	return nil
}

func boolArg(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intArg(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
