package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/core/analytics"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// DefaultAnalyticsWindow is the trailing window reported alongside settings.
const DefaultAnalyticsWindow = 7 * 24 * time.Hour

// AnalyticsServiceImpl implements the AnalyticsService interface.
type AnalyticsServiceImpl struct {
	transitionRepo secondary.TransitionRepository
	now            func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService with injected dependencies.
func NewAnalyticsService(transitionRepo secondary.TransitionRepository) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{transitionRepo: transitionRepo, now: time.Now}
}

// Summarize reports on transitions fired within the trailing window.
func (s *AnalyticsServiceImpl) Summarize(ctx context.Context, tenantID string, window time.Duration) (*primary.AnalyticsReport, error) {
	if window <= 0 {
		window = DefaultAnalyticsWindow
	}
	end := s.now()
	start := end.Add(-window)

	transitions, err := s.transitionRepo.ListInWindow(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}

	return &primary.AnalyticsReport{
		TenantID:    tenantID,
		WindowStart: start,
		WindowEnd:   end,
		Summary:     analytics.Summarize(transitions, start, end),
	}, nil
}

// Ensure AnalyticsServiceImpl implements the interface
var _ primary.AnalyticsService = (*AnalyticsServiceImpl)(nil)
