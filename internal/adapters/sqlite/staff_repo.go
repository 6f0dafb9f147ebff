package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/ports/secondary"
)

// StaffRepository implements secondary.StaffRepository with SQLite.
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create persists a new staff member.
func (r *StaffRepository) Create(ctx context.Context, record *secondary.StaffRecord) error {
	role := record.Role
	if role == "" {
		role = secondary.StaffRoleStaff
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (id, tenant_id, name, role, available) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.TenantID, record.Name, role, record.Available,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

// GetByID retrieves a staff member by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*secondary.StaffRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, role, available, last_assigned_at FROM staff WHERE id = ?`, id)
	record, err := scanStaff(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("staff %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return record, nil
}

// List retrieves staff matching the given filters.
func (r *StaffRepository) List(ctx context.Context, filters secondary.StaffFilters) ([]*secondary.StaffRecord, error) {
	query := `SELECT id, tenant_id, name, role, available, last_assigned_at FROM staff WHERE 1=1`
	var args []any

	if filters.TenantID != "" {
		query += " AND tenant_id = ?"
		args = append(args, filters.TenantID)
	}
	if filters.Role != "" {
		query += " AND role = ?"
		args = append(args, filters.Role)
	}
	query += " ORDER BY tenant_id, role, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var out []*secondary.StaffRecord
	for rows.Next() {
		record, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// SetAvailability marks a staff member as available or not.
func (r *StaffRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE staff SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("staff %s: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// PickAvailable selects and stamps the least recently assigned available staff member.
// Never-assigned staff come first. Selection and stamp are a single statement.
func (r *StaffRepository) PickAvailable(ctx context.Context, tenantID, excludeID string, at time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`UPDATE staff SET last_assigned_at = ?
		WHERE id = (
			SELECT id FROM staff
			WHERE tenant_id = ? AND role = 'staff' AND available = 1 AND id != ?
			ORDER BY last_assigned_at IS NOT NULL, last_assigned_at ASC, id ASC
			LIMIT 1
		)
		RETURNING id`,
		at.UTC(), tenantID, excludeID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to pick available staff: %w", err)
	}
	return id, nil
}

// Supervisors returns the supervisor ids of a tenant.
func (r *StaffRepository) Supervisors(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM staff WHERE tenant_id = ? AND role = 'supervisor' ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supervisors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan supervisor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanStaff(row rowScanner) (*secondary.StaffRecord, error) {
	var lastAssigned sql.NullTime
	record := &secondary.StaffRecord{}
	if err := row.Scan(&record.ID, &record.TenantID, &record.Name, &record.Role, &record.Available, &lastAssigned); err != nil {
		return nil, err
	}
	if lastAssigned.Valid {
		record.LastAssignedAt = lastAssigned.Time
	}
	return record, nil
}

// Ensure StaffRepository implements the interface
var _ secondary.StaffRepository = (*StaffRepository)(nil)
