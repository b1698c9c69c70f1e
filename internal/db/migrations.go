package db

import (
	"database/sql"
	"fmt"
)

// RunMigrations brings the schema to the current version
func RunMigrations(db *DB) error {
	var tableExists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if !tableExists {
		if err := initializeSchema(db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	}

	var currentVersion int
	err = db.QueryRow(`
		SELECT version FROM schema_version
		ORDER BY applied_at DESC LIMIT 1
	`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	if currentVersion < 1 {
		return fmt.Errorf("invalid schema version: %d", currentVersion)
	}

	return nil
}

// initializeSchema creates all tables for a new database
func initializeSchema(db *DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		schemaVersionTable,
		guildConfigsTable,
		userConfigsTable,
		userConfigsIndexes,
		serverConfigsTable,
		serverConfigsIndexes,
		auditLogsTable,
		auditLogsIndexes,
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range statements {
		if err := execSQL(tx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// execSQL executes a SQL statement
func execSQL(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}

// Schema definitions
const (
	schemaVersionTable = `
CREATE TABLE schema_version (
    version    INTEGER NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	guildConfigsTable = `
CREATE TABLE guild_configs (
    guild_id      TEXT PRIMARY KEY,
    admin_role_id TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	userConfigsTable = `
CREATE TABLE user_configs (
    guild_id            TEXT NOT NULL,
    user_id             TEXT NOT NULL,
    encrypted_panel_url BLOB NOT NULL,
    encrypted_api_key   BLOB NOT NULL,
    can_manage_servers  INTEGER NOT NULL DEFAULT 1,
    can_create_users    INTEGER NOT NULL DEFAULT 0,
    max_servers         INTEGER NOT NULL DEFAULT 10,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    PRIMARY KEY (guild_id, user_id)
)`

	userConfigsIndexes = `
CREATE INDEX idx_user_configs_guild ON user_configs(guild_id)`

	serverConfigsTable = `
CREATE TABLE server_configs (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id          TEXT NOT NULL,
    user_id           TEXT NOT NULL,
    server_identifier TEXT NOT NULL,
    friendly_name     TEXT NOT NULL DEFAULT '',
    last_seen_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    UNIQUE (guild_id, user_id, server_identifier)
)`

	serverConfigsIndexes = `
CREATE INDEX idx_server_configs_owner ON server_configs(guild_id, user_id)`

	auditLogsTable = `
CREATE TABLE audit_logs (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id  TEXT NOT NULL,
    user_id   TEXT NOT NULL,
    action    TEXT NOT NULL,
    target    TEXT NOT NULL DEFAULT '',
    result    TEXT NOT NULL,
    detail    TEXT NOT NULL DEFAULT '',
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	auditLogsIndexes = `
CREATE INDEX idx_audit_guild_timestamp ON audit_logs(guild_id, timestamp);
CREATE INDEX idx_audit_action ON audit_logs(action)`
)
