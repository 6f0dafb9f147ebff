// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/ports/secondary"
)

// PolicyRepository implements secondary.PolicyRepository with SQLite.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository creates a new SQLite policy repository.
func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

const policyColumns = `active_preset,
	reminder_enabled, reminder_after_seconds,
	escalation_enabled, escalation_after_seconds, escalation_notify_push, escalation_notify_sms, escalation_notify_email,
	auto_reassign_enabled, auto_reassign_after_seconds,
	critical_alert_enabled, critical_alert_after_seconds, critical_alert_sound`

// Get retrieves the policy of a tenant.
func (r *PolicyRepository) Get(ctx context.Context, tenantID string) (*secondary.PolicyRecord, error) {
	var (
		preset    string
		updatedAt time.Time
	)
	record := &secondary.PolicyRecord{TenantID: tenantID}
	p := &record.Policy

	err := r.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+`, version, updated_at FROM escalation_policies WHERE tenant_id = ?`,
		tenantID,
	).Scan(&preset,
		&p.Reminder.Enabled, &p.Reminder.AfterSeconds,
		&p.Escalation.Enabled, &p.Escalation.AfterSeconds, &p.Escalation.NotifyPush, &p.Escalation.NotifySMS, &p.Escalation.NotifyEmail,
		&p.AutoReassign.Enabled, &p.AutoReassign.AfterSeconds,
		&p.CriticalAlert.Enabled, &p.CriticalAlert.AfterSeconds, &p.CriticalAlert.Sound,
		&record.Version, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policy for tenant %s: %w", tenantID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	p.ActivePreset = policy.Preset(preset)
	record.UpdatedAt = updatedAt
	return record, nil
}

// Save inserts or replaces the tenant's policy, guarded by record.Version.
func (r *PolicyRepository) Save(ctx context.Context, record *secondary.PolicyRecord) error {
	p := record.Policy
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	updatedAt := record.UpdatedAt.UTC()

	var (
		result sql.Result
		err    error
	)
	if record.Version == 0 {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO escalation_policies (tenant_id, `+policyColumns+`, version, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(tenant_id) DO NOTHING`,
			record.TenantID, string(p.ActivePreset),
			p.Reminder.Enabled, p.Reminder.AfterSeconds,
			p.Escalation.Enabled, p.Escalation.AfterSeconds, p.Escalation.NotifyPush, p.Escalation.NotifySMS, p.Escalation.NotifyEmail,
			p.AutoReassign.Enabled, p.AutoReassign.AfterSeconds,
			p.CriticalAlert.Enabled, p.CriticalAlert.AfterSeconds, p.CriticalAlert.Sound,
			updatedAt,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE escalation_policies SET
				active_preset = ?,
				reminder_enabled = ?, reminder_after_seconds = ?,
				escalation_enabled = ?, escalation_after_seconds = ?,
				escalation_notify_push = ?, escalation_notify_sms = ?, escalation_notify_email = ?,
				auto_reassign_enabled = ?, auto_reassign_after_seconds = ?,
				critical_alert_enabled = ?, critical_alert_after_seconds = ?, critical_alert_sound = ?,
				version = version + 1, updated_at = ?
			WHERE tenant_id = ? AND version = ?`,
			string(p.ActivePreset),
			p.Reminder.Enabled, p.Reminder.AfterSeconds,
			p.Escalation.Enabled, p.Escalation.AfterSeconds,
			p.Escalation.NotifyPush, p.Escalation.NotifySMS, p.Escalation.NotifyEmail,
			p.AutoReassign.Enabled, p.AutoReassign.AfterSeconds,
			p.CriticalAlert.Enabled, p.CriticalAlert.AfterSeconds, p.CriticalAlert.Sound,
			updatedAt,
			record.TenantID, record.Version,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("policy for tenant %s at version %d: %w", record.TenantID, record.Version, secondary.ErrVersionConflict)
	}

	record.Version++
	return nil
}

// Ensure PolicyRepository implements the interface
var _ secondary.PolicyRepository = (*PolicyRepository)(nil)
