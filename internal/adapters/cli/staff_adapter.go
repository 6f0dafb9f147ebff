package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/bellhop/internal/ports/primary"
)

// StaffAdapter translates CLI operations to StaffService calls.
type StaffAdapter struct {
	service primary.StaffService
	out     io.Writer
}

// NewStaffAdapter creates a new StaffAdapter with the given service.
func NewStaffAdapter(service primary.StaffService, out io.Writer) *StaffAdapter {
	return &StaffAdapter{service: service, out: out}
}

// Add registers a staff member or supervisor.
func (a *StaffAdapter) Add(ctx context.Context, req primary.AddStaffRequest) (*primary.Staff, error) {
	staff, err := a.service.AddStaff(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Added %s %s (%s)\n", staff.Role, staff.ID, staff.Name)
	return staff, nil
}

// SetAvailability marks a staff member available or unavailable.
func (a *StaffAdapter) SetAvailability(ctx context.Context, staffID string, available bool) error {
	if err := a.service.SetAvailability(ctx, staffID, available); err != nil {
		return err
	}
	state := "unavailable"
	if available {
		state = "available"
	}
	fmt.Fprintf(a.out, "✓ %s is now %s\n", staffID, state)
	return nil
}

// List lists a tenant's staff.
func (a *StaffAdapter) List(ctx context.Context, tenantID, role string) ([]*primary.Staff, error) {
	staff, err := a.service.ListStaff(ctx, primary.StaffFilters{TenantID: tenantID, Role: role})
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	if len(staff) == 0 {
		fmt.Fprintln(a.out, "No staff found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add your first handler:")
		fmt.Fprintln(a.out, "  bellhop staff add \"Ana\" --tenant hotel-1")
		return staff, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tAVAILABLE\tLAST ASSIGNED")
	fmt.Fprintln(w, "--\t----\t----\t---------\t-------------")
	for _, s := range staff {
		last := "-"
		if !s.LastAssignedAt.IsZero() {
			last = s.LastAssignedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Role, yesNo(s.Available), last)
	}
	w.Flush()
	return staff, nil
}
