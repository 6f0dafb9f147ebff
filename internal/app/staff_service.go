package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// StaffServiceImpl implements the StaffService interface.
type StaffServiceImpl struct {
	staffRepo secondary.StaffRepository
}

// NewStaffService creates a new StaffService with injected dependencies.
func NewStaffService(staffRepo secondary.StaffRepository) *StaffServiceImpl {
	return &StaffServiceImpl{staffRepo: staffRepo}
}

// AddStaff registers a staff member or supervisor. New staff start available.
func (s *StaffServiceImpl) AddStaff(ctx context.Context, req primary.AddStaffRequest) (*primary.Staff, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	role := req.Role
	if role == "" {
		role = secondary.StaffRoleStaff
	}
	if role != secondary.StaffRoleStaff && role != secondary.StaffRoleSupervisor {
		return nil, fmt.Errorf("invalid role %q (must be 'staff' or 'supervisor')", role)
	}

	id := req.ID
	if id == "" {
		id = "STAFF-" + uuid.NewString()[:8]
	}

	record := &secondary.StaffRecord{
		ID:        id,
		TenantID:  req.TenantID,
		Name:      req.Name,
		Role:      role,
		Available: true,
	}
	if err := s.staffRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add staff: %w", err)
	}
	return s.recordToStaff(record), nil
}

// SetAvailability marks a staff member as available for reassignment or not.
func (s *StaffServiceImpl) SetAvailability(ctx context.Context, staffID string, available bool) error {
	return s.staffRepo.SetAvailability(ctx, staffID, available)
}

// ListStaff lists staff with optional filters.
func (s *StaffServiceImpl) ListStaff(ctx context.Context, filters primary.StaffFilters) ([]*primary.Staff, error) {
	records, err := s.staffRepo.List(ctx, secondary.StaffFilters{TenantID: filters.TenantID, Role: filters.Role})
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	out := make([]*primary.Staff, len(records))
	for i, r := range records {
		out[i] = s.recordToStaff(r)
	}
	return out, nil
}

func (s *StaffServiceImpl) recordToStaff(r *secondary.StaffRecord) *primary.Staff {
	return &primary.Staff{
		ID:             r.ID,
		TenantID:       r.TenantID,
		Name:           r.Name,
		Role:           r.Role,
		Available:      r.Available,
		LastAssignedAt: r.LastAssignedAt,
	}
}

// Ensure StaffServiceImpl implements the interface
var _ primary.StaffService = (*StaffServiceImpl)(nil)
