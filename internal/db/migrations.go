package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_policies_requests_and_transitions",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_staff_directory",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_critical_alert_sound",
		Up:      migrationV3,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		zap.L().Info("running migration", zap.Int("version", migration.Version), zap.String("name", migration.Name))

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS escalation_policies (
			tenant_id TEXT PRIMARY KEY,
			active_preset TEXT NOT NULL DEFAULT 'standard' CHECK (active_preset IN ('minimal', 'soft', 'standard', 'strict', 'custom')),
			reminder_enabled INTEGER NOT NULL DEFAULT 0,
			reminder_after_seconds INTEGER NOT NULL DEFAULT 180,
			escalation_enabled INTEGER NOT NULL DEFAULT 0,
			escalation_after_seconds INTEGER NOT NULL DEFAULT 300,
			escalation_notify_push INTEGER NOT NULL DEFAULT 0,
			escalation_notify_sms INTEGER NOT NULL DEFAULT 0,
			escalation_notify_email INTEGER NOT NULL DEFAULT 0,
			auto_reassign_enabled INTEGER NOT NULL DEFAULT 0,
			auto_reassign_after_seconds INTEGER NOT NULL DEFAULT 600,
			critical_alert_enabled INTEGER NOT NULL DEFAULT 0,
			critical_alert_after_seconds INTEGER NOT NULL DEFAULT 900,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS service_requests (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT 'push' CHECK (channel IN ('push', 'sms', 'email', 'dashboard')),
			assigned_handler_id TEXT,
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'acknowledged', 'closed')),
			created_at DATETIME NOT NULL,
			acknowledged_by TEXT,
			acknowledged_at DATETIME,
			closed_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_service_requests_tenant_status ON service_requests(tenant_id, status);
		CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status);

		CREATE TABLE IF NOT EXISTS stage_transitions (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			stage TEXT NOT NULL CHECK (stage IN ('reminder', 'escalation', 'auto_reassign', 'critical_alert', 'acknowledged')),
			fired_at DATETIME NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			FOREIGN KEY (request_id) REFERENCES service_requests(id) ON DELETE CASCADE,
			UNIQUE (request_id, stage)
		);
		CREATE INDEX IF NOT EXISTS idx_stage_transitions_tenant_fired ON stage_transitions(tenant_id, fired_at);
	`)
	return err
}

func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('staff', 'supervisor')),
			available INTEGER NOT NULL DEFAULT 1,
			last_assigned_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_staff_tenant_role ON staff(tenant_id, role);
	`)
	return err
}

func migrationV3(tx *sql.Tx) error {
	var count int
	err := tx.QueryRow("SELECT COUNT(*) FROM pragma_table_info('escalation_policies') WHERE name = 'critical_alert_sound'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = tx.Exec("ALTER TABLE escalation_policies ADD COLUMN critical_alert_sound INTEGER NOT NULL DEFAULT 0")
	return err
}
