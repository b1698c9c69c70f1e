package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ptero-discord-admin/internal/models"
)

// AuditRepository handles audit log data access. Entries are append-only;
// nothing updates or deletes them except retention cleanup.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends a new audit log entry. The timestamp is bound explicitly,
// in UTC, so that filter and cutoff parameters compare against the same
// driver representation.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	entry.Timestamp = time.Now().UTC()

	query := `
		INSERT INTO audit_logs (guild_id, user_id, action, target, result, detail, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.GuildID,
		entry.UserID,
		entry.Action,
		entry.Target,
		entry.Result,
		entry.Detail,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// List returns a guild's audit entries newest first, narrowed by filter
func (r *AuditRepository) List(ctx context.Context, guildID string, filter models.AuditFilter, limit, offset int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, guild_id, user_id, action, target, result, detail, timestamp
		FROM audit_logs
		WHERE guild_id = ?
	`
	args := []interface{}{guildID}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}
	// Normalized to UTC so every bound value shares the stored representation.
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.Until.UTC())
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.GuildID,
			&entry.UserID,
			&entry.Action,
			&entry.Target,
			&entry.Result,
			&entry.Detail,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CountByGuild returns the total number of entries for a guild
func (r *AuditRepository) CountByGuild(ctx context.Context, guildID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE guild_id = ?`, guildID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}

// DeleteOld deletes entries older than the cutoff and returns the count deleted
func (r *AuditRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM audit_logs WHERE timestamp < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return count, nil
}
