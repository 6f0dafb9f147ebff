package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/ports/secondary"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

// ============================================================================
// memStore implements RequestRepository and TransitionRepository behind one lock,
// so Claim is atomic with the request's status like the SQLite adapter.
// ============================================================================

var (
	_ secondary.RequestRepository    = (*memStore)(nil)
	_ secondary.TransitionRepository = (*memStore)(nil)
)

type memStore struct {
	mu          sync.Mutex
	requests    map[string]*secondary.RequestRecord
	transitions []request.Transition
	claimErr    error
	recordErr   error
}

func newMemStore() *memStore {
	return &memStore{requests: make(map[string]*secondary.RequestRecord)}
}

func (m *memStore) addOpen(id, tenantID, handlerID string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[id] = &secondary.RequestRecord{
		ID: id, TenantID: tenantID, Channel: "push", AssignedHandlerID: handlerID,
		Status: "open", CreatedAt: createdAt,
	}
}

func (m *memStore) Create(ctx context.Context, record *secondary.RequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.requests[record.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*secondary.RequestRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.requests[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, filters secondary.RequestFilters) ([]*secondary.RequestRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.RequestRecord
	for _, rec := range m.requests {
		if filters.TenantID != "" && rec.TenantID != filters.TenantID {
			continue
		}
		if filters.Status != "" && rec.Status != filters.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListTenantsWithOpenRequests(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, rec := range m.requests {
		if rec.Status == "open" && !seen[rec.TenantID] {
			seen[rec.TenantID] = true
			out = append(out, rec.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) UpdateAssignee(ctx context.Context, id, handlerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.requests[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if rec.Status != "open" {
		return secondary.ErrStatusConflict
	}
	rec.AssignedHandlerID = handlerID
	return nil
}

func (m *memStore) Acknowledge(ctx context.Context, id, handlerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.requests[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if rec.Status != "open" {
		return secondary.ErrStatusConflict
	}
	rec.Status, rec.AcknowledgedBy, rec.AcknowledgedAt = "acknowledged", handlerID, at
	return nil
}

func (m *memStore) Close(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.requests[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if rec.Status == "closed" {
		return secondary.ErrStatusConflict
	}
	rec.Status, rec.ClosedAt = "closed", at
	return nil
}

func (m *memStore) hasTransition(requestID string, stage policy.Stage) bool {
	for _, tr := range m.transitions {
		if tr.RequestID == requestID && tr.Stage == stage {
			return true
		}
	}
	return false
}

func (m *memStore) Claim(ctx context.Context, tr request.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	rec, ok := m.requests[tr.RequestID]
	if !ok || rec.Status != "open" || m.hasTransition(tr.RequestID, tr.Stage) {
		return false, nil
	}
	m.transitions = append(m.transitions, tr)
	return true, nil
}

func (m *memStore) Record(ctx context.Context, tr request.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return false, m.recordErr
	}
	if m.hasTransition(tr.RequestID, tr.Stage) {
		return false, nil
	}
	m.transitions = append(m.transitions, tr)
	return true, nil
}

func (m *memStore) ListByRequest(ctx context.Context, requestID string) ([]request.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.Transition
	for _, tr := range m.transitions {
		if tr.RequestID == requestID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *memStore) ListInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]request.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.Transition
	for _, tr := range m.transitions {
		if tr.TenantID == tenantID && !tr.FiredAt.Before(start) && !tr.FiredAt.After(end) {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *memStore) stages(requestID string) []policy.Stage {
	trs, _ := m.ListByRequest(context.Background(), requestID)
	out := make([]policy.Stage, len(trs))
	for i, tr := range trs {
		out[i] = tr.Stage
	}
	return out
}

// ============================================================================
// mockPolicyRepository
// ============================================================================

var _ secondary.PolicyRepository = (*mockPolicyRepository)(nil)

type mockPolicyRepository struct {
	mu        sync.Mutex
	records   map[string]secondary.PolicyRecord
	conflicts int // number of upcoming saves to reject with ErrVersionConflict
	saves     int
}

func newMockPolicyRepository() *mockPolicyRepository {
	return &mockPolicyRepository{records: make(map[string]secondary.PolicyRecord)}
}

func (m *mockPolicyRepository) put(tenantID string, p policy.Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[tenantID]
	m.records[tenantID] = secondary.PolicyRecord{TenantID: tenantID, Policy: p, Version: rec.Version + 1}
}

func (m *mockPolicyRepository) Get(ctx context.Context, tenantID string) (*secondary.PolicyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[tenantID]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	return &rec, nil
}

func (m *mockPolicyRepository) Save(ctx context.Context, record *secondary.PolicyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.conflicts > 0 {
		m.conflicts--
		return secondary.ErrVersionConflict
	}
	if m.records[record.TenantID].Version != record.Version {
		return secondary.ErrVersionConflict
	}
	record.Version++
	m.records[record.TenantID] = *record
	return nil
}

// ============================================================================
// mockStaffRepository
// ============================================================================

var _ secondary.StaffRepository = (*mockStaffRepository)(nil)

type mockStaffRepository struct {
	mu          sync.Mutex
	supervisors map[string][]string
	available   map[string][]string // tenant -> handler queue
	records     map[string]*secondary.StaffRecord
}

func newMockStaffRepository() *mockStaffRepository {
	return &mockStaffRepository{
		supervisors: make(map[string][]string),
		available:   make(map[string][]string),
		records:     make(map[string]*secondary.StaffRecord),
	}
}

func (m *mockStaffRepository) Create(ctx context.Context, record *secondary.StaffRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *mockStaffRepository) GetByID(ctx context.Context, id string) (*secondary.StaffRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	return rec, nil
}

func (m *mockStaffRepository) List(ctx context.Context, filters secondary.StaffFilters) ([]*secondary.StaffRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.StaffRecord
	for _, rec := range m.records {
		if filters.TenantID != "" && rec.TenantID != filters.TenantID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockStaffRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return secondary.ErrNotFound
	}
	rec.Available = available
	return nil
}

func (m *mockStaffRepository) PickAvailable(ctx context.Context, tenantID, excludeID string, at time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.available[tenantID] {
		if id != excludeID {
			m.available[tenantID] = append(m.available[tenantID][:i:i], m.available[tenantID][i+1:]...)
			return id, nil
		}
	}
	return "", nil
}

func (m *mockStaffRepository) Supervisors(ctx context.Context, tenantID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supervisors[tenantID], nil
}

// ============================================================================
// mockNotifier
// ============================================================================

var _ secondary.Notifier = (*mockNotifier)(nil)

type sentNotification struct {
	Channel   policy.Channel
	Target    string
	Broadcast bool
	Payload   effects.Payload
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (m *mockNotifier) Notify(ctx context.Context, channel policy.Channel, target string, payload effects.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentNotification{Channel: channel, Target: target, Payload: payload})
	return nil
}

func (m *mockNotifier) Broadcast(ctx context.Context, payload effects.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentNotification{Broadcast: true, Target: payload.TenantID, Payload: payload})
	return nil
}

func (m *mockNotifier) forStage(stage policy.Stage) []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentNotification
	for _, n := range m.sent {
		if n.Payload.Stage == stage {
			out = append(out, n)
		}
	}
	return out
}

// ============================================================================
// mockLocker grants every lease unless held is set.
// ============================================================================

var _ secondary.Locker = (*mockLocker)(nil)

type mockLocker struct {
	held     bool
	acquired int
	released int
	mu       sync.Mutex
}

type mockLease struct{ l *mockLocker }

func (le mockLease) Release(ctx context.Context) error {
	le.l.mu.Lock()
	defer le.l.mu.Unlock()
	le.l.released++
	return nil
}

func (m *mockLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (secondary.Lease, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return nil, false, nil
	}
	m.acquired++
	return mockLease{l: m}, true, nil
}
