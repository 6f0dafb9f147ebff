package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(), so a repository referencing a column that
// doesn't exist here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
const SchemaSQL = `
-- Escalation policies (one per tenant, replaced wholesale, versioned for compare-and-swap)
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
	critical_alert_sound INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Service requests
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

-- Stage transitions (append-only, at most one row per request and stage)
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

-- Staff directory
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
`

// InitSchema brings the database up to date.
// Fresh databases get SchemaSQL directly; existing ones run pending migrations.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	// Mark all migrations as applied for fresh installs
	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
