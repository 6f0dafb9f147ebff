package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/bellhop/internal/adapters/sqlite"
	"github.com/example/bellhop/internal/ports/secondary"
)

func TestRequestRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRequestRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.RequestRecord{
		ID:        "REQ-001",
		TenantID:  "hotel-1",
		Channel:   "sms",
		CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "REQ-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "open" {
		t.Errorf("Status = %q, want open", got.Status)
	}
	if got.AssignedHandlerID != "" {
		t.Errorf("AssignedHandlerID = %q, want empty", got.AssignedHandlerID)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
	}

	if _, err := repo.GetByID(ctx, "REQ-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRequestRepository(db)
	ctx := context.Background()

	seedRequest(t, db, "REQ-001", "hotel-1")
	seedRequest(t, db, "REQ-002", "hotel-1")
	seedRequest(t, db, "REQ-003", "hotel-2")
	repo.Close(ctx, "REQ-002", t0.Add(time.Minute))

	tests := []struct {
		name    string
		filters secondary.RequestFilters
		want    int
	}{
		{"all", secondary.RequestFilters{}, 3},
		{"by tenant", secondary.RequestFilters{TenantID: "hotel-1"}, 2},
		{"open in tenant", secondary.RequestFilters{TenantID: "hotel-1", Status: "open"}, 1},
		{"limit", secondary.RequestFilters{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	tenants, err := repo.ListTenantsWithOpenRequests(ctx)
	if err != nil {
		t.Fatalf("ListTenantsWithOpenRequests failed: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("tenants = %v, want hotel-1 and hotel-2", tenants)
	}
}

func TestRequestRepository_StatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRequestRepository(db)
	ctx := context.Background()
	seedRequest(t, db, "REQ-001", "hotel-1")

	if err := repo.Acknowledge(ctx, "REQ-001", "staff-1", t0.Add(90*time.Second)); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "REQ-001")
	if got.Status != "acknowledged" || got.AcknowledgedBy != "staff-1" {
		t.Errorf("after ack: status=%q by=%q", got.Status, got.AcknowledgedBy)
	}
	if !got.AcknowledgedAt.Equal(t0.Add(90 * time.Second)) {
		t.Errorf("AcknowledgedAt = %v", got.AcknowledgedAt)
	}

	if err := repo.Acknowledge(ctx, "REQ-001", "staff-2", t0.Add(100*time.Second)); !errors.Is(err, secondary.ErrStatusConflict) {
		t.Errorf("second Acknowledge: expected ErrStatusConflict, got %v", err)
	}
	if err := repo.UpdateAssignee(ctx, "REQ-001", "staff-2"); !errors.Is(err, secondary.ErrStatusConflict) {
		t.Errorf("UpdateAssignee on acknowledged: expected ErrStatusConflict, got %v", err)
	}

	if err := repo.Close(ctx, "REQ-001", t0.Add(10*time.Minute)); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := repo.Close(ctx, "REQ-001", t0.Add(11*time.Minute)); !errors.Is(err, secondary.ErrStatusConflict) {
		t.Errorf("second Close: expected ErrStatusConflict, got %v", err)
	}
	if err := repo.Close(ctx, "REQ-404", t0); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("Close missing: expected ErrNotFound, got %v", err)
	}
}

func TestRequestRepository_UpdateAssignee(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRequestRepository(db)
	ctx := context.Background()
	seedRequest(t, db, "REQ-001", "hotel-1")

	if err := repo.UpdateAssignee(ctx, "REQ-001", "staff-9"); err != nil {
		t.Fatalf("UpdateAssignee failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "REQ-001")
	if got.AssignedHandlerID != "staff-9" {
		t.Errorf("AssignedHandlerID = %q, want staff-9", got.AssignedHandlerID)
	}
}
