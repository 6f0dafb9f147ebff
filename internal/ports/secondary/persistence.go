// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a policy was saved by someone else since it was read.
	ErrVersionConflict = errors.New("version conflict")
	// ErrStatusConflict is returned when a conditional status update lost to another writer.
	ErrStatusConflict = errors.New("status conflict")
)

// PolicyRepository defines the secondary port for escalation policy persistence.
// One record per tenant; records are replaced, never deleted.
type PolicyRepository interface {
	// Get retrieves the policy of a tenant. Returns ErrNotFound if none was saved.
	Get(ctx context.Context, tenantID string) (*PolicyRecord, error)

	// Save inserts (Version 0) or replaces (Version n) the tenant's policy.
	// Replacement only succeeds if the stored version is still n, else ErrVersionConflict.
	// On success record.Version holds the new version.
	Save(ctx context.Context, record *PolicyRecord) error
}

// PolicyRecord represents a policy as stored in persistence.
type PolicyRecord struct {
	TenantID  string
	Policy    policy.Policy
	Version   int
	UpdatedAt time.Time
}

// RequestRepository defines the secondary port for service request persistence.
type RequestRepository interface {
	// Create persists a new open request.
	Create(ctx context.Context, record *RequestRecord) error

	// GetByID retrieves a request by its ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*RequestRecord, error)

	// List retrieves requests matching the given filters, oldest first.
	List(ctx context.Context, filters RequestFilters) ([]*RequestRecord, error)

	// ListTenantsWithOpenRequests returns tenants that have at least one open request.
	ListTenantsWithOpenRequests(ctx context.Context) ([]string, error)

	// UpdateAssignee sets the assigned handler of an open request.
	UpdateAssignee(ctx context.Context, id, handlerID string) error

	// Acknowledge moves an open request to acknowledged. Returns ErrStatusConflict if not open.
	Acknowledge(ctx context.Context, id, handlerID string, at time.Time) error

	// Close moves an open or acknowledged request to closed. Returns ErrStatusConflict if closed.
	Close(ctx context.Context, id string, at time.Time) error
}

// RequestRecord represents a service request as stored in persistence.
type RequestRecord struct {
	ID                string
	TenantID          string
	Channel           string
	AssignedHandlerID string // May be empty
	Status            string // 'open', 'acknowledged', 'closed'
	CreatedAt         time.Time
	AcknowledgedBy    string    // May be empty
	AcknowledgedAt    time.Time // Zero unless acknowledged
	ClosedAt          time.Time // Zero unless closed
}

// RequestFilters contains filter options for listing requests.
type RequestFilters struct {
	TenantID string
	Status   string
	Limit    int
}

// TransitionRepository defines the secondary port for the append-only stage transition log.
// The log is keyed by (request, stage) and holds at most one entry per key.
type TransitionRepository interface {
	// Claim appends a stage transition only if no entry exists for (RequestID, Stage)
	// and the request is still open, as one atomic step. Returns false when
	// another evaluator already fired the stage or the request is no longer open.
	Claim(ctx context.Context, transition request.Transition) (bool, error)

	// Record appends a transition regardless of request status, ignoring duplicates.
	// Used for acknowledgments. Returns false if the entry already existed.
	Record(ctx context.Context, transition request.Transition) (bool, error)

	// ListByRequest returns a request's transitions in firing order.
	ListByRequest(ctx context.Context, requestID string) ([]request.Transition, error)

	// ListInWindow returns a tenant's transitions fired within [start, end].
	ListInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]request.Transition, error)
}

// StaffRepository defines the secondary port for the handler directory.
type StaffRepository interface {
	// Create persists a new staff member.
	Create(ctx context.Context, record *StaffRecord) error

	// GetByID retrieves a staff member. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*StaffRecord, error)

	// List retrieves staff matching the given filters.
	List(ctx context.Context, filters StaffFilters) ([]*StaffRecord, error)

	// SetAvailability marks a staff member as available or not.
	SetAvailability(ctx context.Context, id string, available bool) error

	// PickAvailable selects the least recently assigned available staff member
	// of a tenant other than excludeID and stamps the assignment time.
	// Returns "" when nobody is available.
	PickAvailable(ctx context.Context, tenantID, excludeID string, at time.Time) (string, error)

	// Supervisors returns the supervisor ids of a tenant.
	Supervisors(ctx context.Context, tenantID string) ([]string, error)
}

// StaffRecord represents a staff member as stored in persistence.
type StaffRecord struct {
	ID             string
	TenantID       string
	Name           string
	Role           string // 'staff', 'supervisor'
	Available      bool
	LastAssignedAt time.Time // Zero if never assigned
}

// StaffFilters contains filter options for listing staff.
type StaffFilters struct {
	TenantID string
	Role     string
}

// Staff role constants
const (
	StaffRoleStaff      = "staff"
	StaffRoleSupervisor = "supervisor"
)
