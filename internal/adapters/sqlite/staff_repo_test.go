package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/bellhop/internal/adapters/sqlite"
	"github.com/example/bellhop/internal/ports/secondary"
)

func TestStaffRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.StaffRecord{ID: "boss-1", TenantID: "hotel-1", Name: "Mia", Role: "supervisor", Available: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	repo.Create(ctx, &secondary.StaffRecord{ID: "staff-1", TenantID: "hotel-1", Name: "Ana", Available: true})

	got, err := repo.GetByID(ctx, "staff-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != secondary.StaffRoleStaff {
		t.Errorf("default role = %q, want staff", got.Role)
	}

	all, _ := repo.List(ctx, secondary.StaffFilters{TenantID: "hotel-1"})
	if len(all) != 2 {
		t.Errorf("List len = %d, want 2", len(all))
	}
	sups, _ := repo.Supervisors(ctx, "hotel-1")
	if len(sups) != 1 || sups[0] != "boss-1" {
		t.Errorf("Supervisors = %v, want [boss-1]", sups)
	}

	if _, err := repo.GetByID(ctx, "nobody"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStaffRepository_PickAvailableRotates(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedStaff(t, db, "staff-1", "hotel-1", "staff", true)
	seedStaff(t, db, "staff-2", "hotel-1", "staff", true)
	seedStaff(t, db, "staff-3", "hotel-1", "staff", false)
	seedStaff(t, db, "boss-1", "hotel-1", "supervisor", true)
	seedStaff(t, db, "other", "hotel-2", "staff", true)

	first, err := repo.PickAvailable(ctx, "hotel-1", "staff-1", t0)
	if err != nil {
		t.Fatalf("PickAvailable failed: %v", err)
	}
	if first != "staff-2" {
		t.Errorf("first pick = %q, want staff-2 (staff-1 excluded, staff-3 unavailable)", first)
	}

	second, _ := repo.PickAvailable(ctx, "hotel-1", "", t0.Add(time.Minute))
	if second != "staff-1" {
		t.Errorf("second pick = %q, want never-assigned staff-1", second)
	}
	third, _ := repo.PickAvailable(ctx, "hotel-1", "", t0.Add(2*time.Minute))
	if third != "staff-2" {
		t.Errorf("third pick = %q, want least recently assigned staff-2", third)
	}
}

func TestStaffRepository_PickAvailableNobody(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "staff-1", "hotel-1", "staff", true)

	if err := repo.SetAvailability(ctx, "staff-1", false); err != nil {
		t.Fatalf("SetAvailability failed: %v", err)
	}
	got, err := repo.PickAvailable(ctx, "hotel-1", "", t0)
	if err != nil {
		t.Fatalf("PickAvailable failed: %v", err)
	}
	if got != "" {
		t.Errorf("pick = %q, want nobody", got)
	}

	if err := repo.SetAvailability(ctx, "ghost", true); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
