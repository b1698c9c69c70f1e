package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ptero-discord-admin/internal/models"
)

// ServerRepository handles the server link cache. Rows mirror the panel API
// and may be dropped and repopulated at any time.
type ServerRepository struct {
	db *sql.DB
}

// NewServerRepository creates a new server repository
func NewServerRepository(db *sql.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

// Link records a server as linked by a user. Re-linking an existing server
// only refreshes its name and last-seen time.
func (r *ServerRepository) Link(ctx context.Context, link *models.ServerLink) error {
	query := `
		INSERT INTO server_configs (guild_id, user_id, server_identifier, friendly_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id, server_identifier) DO UPDATE SET
			friendly_name = excluded.friendly_name,
			last_seen_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		link.GuildID, link.UserID, link.ServerIdentifier, link.FriendlyName)
	if err != nil {
		return fmt.Errorf("failed to link server: %w", err)
	}
	return nil
}

// Unlink removes a linked server. Unlinking an absent server is not an error.
func (r *ServerRepository) Unlink(ctx context.Context, guildID, userID, identifier string) error {
	query := `
		DELETE FROM server_configs
		WHERE guild_id = ? AND user_id = ? AND server_identifier = ?
	`

	if _, err := r.db.ExecContext(ctx, query, guildID, userID, identifier); err != nil {
		return fmt.Errorf("failed to unlink server: %w", err)
	}
	return nil
}

// CountByUser returns how many servers a user currently has linked. Used for
// the max_servers check before a new link is allowed.
func (r *ServerRepository) CountByUser(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM server_configs WHERE guild_id = ? AND user_id = ?`,
		guildID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count server links: %w", err)
	}
	return count, nil
}

// ListByUser returns a user's linked servers
func (r *ServerRepository) ListByUser(ctx context.Context, guildID, userID string) ([]*models.ServerLink, error) {
	query := `
		SELECT id, guild_id, user_id, server_identifier, friendly_name, last_seen_at
		FROM server_configs
		WHERE guild_id = ? AND user_id = ?
		ORDER BY friendly_name
	`

	rows, err := r.db.QueryContext(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list server links: %w", err)
	}
	defer rows.Close()

	var links []*models.ServerLink
	for rows.Next() {
		link := &models.ServerLink{}
		err := rows.Scan(&link.ID, &link.GuildID, &link.UserID,
			&link.ServerIdentifier, &link.FriendlyName, &link.LastSeenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Get returns one linked server, or nil when the user has not linked it
func (r *ServerRepository) Get(ctx context.Context, guildID, userID, identifier string) (*models.ServerLink, error) {
	query := `
		SELECT id, guild_id, user_id, server_identifier, friendly_name, last_seen_at
		FROM server_configs
		WHERE guild_id = ? AND user_id = ? AND server_identifier = ?
	`

	link := &models.ServerLink{}
	err := r.db.QueryRowContext(ctx, query, guildID, userID, identifier).Scan(
		&link.ID, &link.GuildID, &link.UserID,
		&link.ServerIdentifier, &link.FriendlyName, &link.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server link: %w", err)
	}
	return link, nil
}

// DeleteByUser drops all of a user's links, e.g. on credential reset
func (r *ServerRepository) DeleteByUser(ctx context.Context, guildID, userID string) error {
	query := `DELETE FROM server_configs WHERE guild_id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete server links: %w", err)
	}
	return nil
}
