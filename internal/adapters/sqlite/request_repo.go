package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/ports/secondary"
)

// RequestRepository implements secondary.RequestRepository with SQLite.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new SQLite request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, tenant_id, channel, assigned_handler_id, status, created_at, acknowledged_by, acknowledged_at, closed_at`

// Create persists a new request.
func (r *RequestRepository) Create(ctx context.Context, record *secondary.RequestRecord) error {
	status := record.Status
	if status == "" {
		status = "open"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO service_requests (id, tenant_id, channel, assigned_handler_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.TenantID,
		record.Channel,
		nullString(record.AssignedHandlerID),
		status,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by its ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*secondary.RequestRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = ?`, id)
	record, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return record, nil
}

// List retrieves requests matching the given filters.
func (r *RequestRepository) List(ctx context.Context, filters secondary.RequestFilters) ([]*secondary.RequestRecord, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE 1=1`
	var args []any

	if filters.TenantID != "" {
		query += " AND tenant_id = ?"
		args = append(args, filters.TenantID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at ASC, id ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*secondary.RequestRecord
	for rows.Next() {
		record, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, record)
	}

	return requests, rows.Err()
}

// ListTenantsWithOpenRequests returns tenants that have at least one open request.
func (r *RequestRepository) ListTenantsWithOpenRequests(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT tenant_id FROM service_requests WHERE status = 'open' ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

// UpdateAssignee sets the assigned handler of an open request.
func (r *RequestRepository) UpdateAssignee(ctx context.Context, id, handlerID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE service_requests SET assigned_handler_id = ? WHERE id = ? AND status = 'open'`,
		nullString(handlerID), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignee: %w", err)
	}
	return r.checkConditional(ctx, result, id)
}

// Acknowledge moves an open request to acknowledged.
func (r *RequestRepository) Acknowledge(ctx context.Context, id, handlerID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE service_requests SET status = 'acknowledged', acknowledged_by = ?, acknowledged_at = ? WHERE id = ? AND status = 'open'`,
		nullString(handlerID), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge request: %w", err)
	}
	return r.checkConditional(ctx, result, id)
}

// Close moves an open or acknowledged request to closed.
func (r *RequestRepository) Close(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE service_requests SET status = 'closed', closed_at = ? WHERE id = ? AND status != 'closed'`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close request: %w", err)
	}
	return r.checkConditional(ctx, result, id)
}

// checkConditional distinguishes a missing request from a lost status race.
func (r *RequestRepository) checkConditional(ctx context.Context, result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_requests WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check request existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("request %s: %w", id, secondary.ErrNotFound)
	}
	return fmt.Errorf("request %s: %w", id, secondary.ErrStatusConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*secondary.RequestRecord, error) {
	var (
		handlerID      sql.NullString
		acknowledgedBy sql.NullString
		acknowledgedAt sql.NullTime
		closedAt       sql.NullTime
	)
	record := &secondary.RequestRecord{}
	err := row.Scan(&record.ID, &record.TenantID, &record.Channel, &handlerID, &record.Status,
		&record.CreatedAt, &acknowledgedBy, &acknowledgedAt, &closedAt)
	if err != nil {
		return nil, err
	}
	record.AssignedHandlerID = handlerID.String
	record.AcknowledgedBy = acknowledgedBy.String
	if acknowledgedAt.Valid {
		record.AcknowledgedAt = acknowledgedAt.Time
	}
	if closedAt.Valid {
		record.ClosedAt = closedAt.Time
	}
	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure RequestRepository implements the interface
var _ secondary.RequestRepository = (*RequestRepository)(nil)
