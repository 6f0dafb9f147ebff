package primary

import (
	"context"
	"time"
)

// StaffService defines the primary port for the handler directory.
type StaffService interface {
	// AddStaff registers a staff member or supervisor.
	AddStaff(ctx context.Context, req AddStaffRequest) (*Staff, error)

	// SetAvailability marks a staff member as available for reassignment or not.
	SetAvailability(ctx context.Context, staffID string, available bool) error

	// ListStaff lists a tenant's staff.
	ListStaff(ctx context.Context, filters StaffFilters) ([]*Staff, error)
}

// AddStaffRequest contains parameters for adding a staff member.
type AddStaffRequest struct {
	ID       string // generated when empty
	TenantID string
	Name     string
	Role     string // 'staff' (default) or 'supervisor'
}

// Staff represents a staff member at the port boundary.
type Staff struct {
	ID             string
	TenantID       string
	Name           string
	Role           string
	Available      bool
	LastAssignedAt time.Time
}

// StaffFilters contains filter options for listing staff.
type StaffFilters struct {
	TenantID string
	Role     string
}
