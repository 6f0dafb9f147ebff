package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/bellhop/internal/ports/primary"
)

// RequestAdapter translates CLI operations to RequestService calls.
type RequestAdapter struct {
	service primary.RequestService
	out     io.Writer
}

// NewRequestAdapter creates a new RequestAdapter with the given service.
func NewRequestAdapter(service primary.RequestService, out io.Writer) *RequestAdapter {
	return &RequestAdapter{
		service: service,
		out:     out,
	}
}

// Open opens a request and prints its id.
func (a *RequestAdapter) Open(ctx context.Context, req primary.OpenRequestRequest) (*primary.ServiceRequest, error) {
	opened, err := a.service.OpenRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open request: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Opened %s for %s", opened.ID, opened.TenantID)
	if opened.AssignedHandlerID != "" {
		fmt.Fprintf(a.out, " (handler %s via %s)", opened.AssignedHandlerID, opened.Channel)
	}
	fmt.Fprintln(a.out)
	return opened, nil
}

// Acknowledge acknowledges a request on behalf of handlerID.
func (a *RequestAdapter) Acknowledge(ctx context.Context, requestID, handlerID string) (*primary.ServiceRequest, error) {
	req, err := a.service.Acknowledge(ctx, requestID, handlerID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s acknowledged by %s after %s\n",
		req.ID, orDash(req.AcknowledgedBy), req.AcknowledgedAt.Sub(req.CreatedAt).Round(time.Second))
	return req, nil
}

// Close closes a request.
func (a *RequestAdapter) Close(ctx context.Context, requestID string) (*primary.ServiceRequest, error) {
	req, err := a.service.Close(ctx, requestID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s closed\n", req.ID)
	return req, nil
}

// Show displays a request with its stage history.
func (a *RequestAdapter) Show(ctx context.Context, requestID string) (*primary.RequestDetail, error) {
	detail, err := a.service.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	req := detail.Request
	fmt.Fprintf(a.out, "\nRequest: %s\n", req.ID)
	fmt.Fprintf(a.out, "Tenant:  %s\n", req.TenantID)
	fmt.Fprintf(a.out, "Handler: %s\n", orDash(req.AssignedHandlerID))
	fmt.Fprintf(a.out, "Channel: %s\n", req.Channel)
	fmt.Fprintf(a.out, "Status:  %s\n", req.Status)
	fmt.Fprintf(a.out, "Created: %s\n", req.CreatedAt.Format(time.RFC3339))
	if detail.NextStage != "" {
		fmt.Fprintf(a.out, "Next:    %s at %s\n", detail.NextStage, detail.NextDueAt.Format(time.RFC3339))
	}

	if len(detail.Transitions) > 0 {
		fmt.Fprintln(a.out)
		w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STAGE\tFIRED\tELAPSED")
		fmt.Fprintln(w, "-----\t-----\t-------")
		for _, tr := range detail.Transitions {
			fmt.Fprintf(w, "%s\t%s\t%ds\n", tr.Stage, tr.FiredAt.Format(time.RFC3339), tr.ElapsedSeconds)
		}
		w.Flush()
	}
	fmt.Fprintln(a.out)

	return detail, nil
}

// List lists a tenant's requests, optionally filtered by status.
func (a *RequestAdapter) List(ctx context.Context, tenantID, status string, limit int) ([]*primary.ServiceRequest, error) {
	reqs, err := a.service.ListRequests(ctx, primary.RequestFilters{TenantID: tenantID, Status: status, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "No requests found.")
		return reqs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tHANDLER\tCHANNEL\tSTATUS\tCREATED")
	fmt.Fprintln(w, "--\t-------\t-------\t------\t-------")
	for _, req := range reqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			req.ID,
			orDash(req.AssignedHandlerID),
			req.Channel,
			req.Status,
			req.CreatedAt.Format(time.RFC3339),
		)
	}
	w.Flush()
	return reqs, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
