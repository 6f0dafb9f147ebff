package primary

import (
	"context"
	"time"
)

// RequestService defines the primary port for service request lifecycle operations.
type RequestService interface {
	// OpenRequest registers a new open request and sends the base notifications.
	OpenRequest(ctx context.Context, req OpenRequestRequest) (*ServiceRequest, error)

	// Acknowledge records that a handler responded to an open request.
	Acknowledge(ctx context.Context, requestID, handlerID string) (*ServiceRequest, error)

	// Close closes an open or acknowledged request.
	Close(ctx context.Context, requestID string) (*ServiceRequest, error)

	// GetRequest retrieves a request with its stage history.
	GetRequest(ctx context.Context, requestID string) (*RequestDetail, error)

	// ListRequests lists requests with optional filters.
	ListRequests(ctx context.Context, filters RequestFilters) ([]*ServiceRequest, error)
}

// OpenRequestRequest contains parameters for opening a request.
type OpenRequestRequest struct {
	ID        string // generated when empty
	TenantID  string
	Channel   string // defaults to push
	HandlerID string // may be empty
	CreatedAt time.Time
}

// ServiceRequest represents a service request at the port boundary.
type ServiceRequest struct {
	ID                string
	TenantID          string
	Channel           string
	AssignedHandlerID string // May be empty
	Status            string // 'open', 'acknowledged', 'closed'
	CreatedAt         time.Time
	AcknowledgedBy    string    // May be empty
	AcknowledgedAt    time.Time // Zero unless acknowledged
	ClosedAt          time.Time // Zero unless closed
	StagesFired       []string
}

// RequestDetail adds history and the next scheduled stage to a request.
type RequestDetail struct {
	Request     *ServiceRequest
	Transitions []FiredTransition
	NextStage   string // empty when nothing is pending
	NextDueAt   time.Time
}

// RequestFilters contains filter options for listing requests.
type RequestFilters struct {
	TenantID string
	Status   string
	Limit    int
}
