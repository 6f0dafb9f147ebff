package primary

import (
	"context"
	"time"

	"github.com/example/bellhop/internal/core/analytics"
)

// AnalyticsService defines the primary port for response-time reporting.
type AnalyticsService interface {
	// Summarize reports on the tenant's requests fired within the last window.
	Summarize(ctx context.Context, tenantID string, window time.Duration) (*AnalyticsReport, error)
}

// AnalyticsReport is a summary together with the window it covers.
type AnalyticsReport struct {
	TenantID    string
	WindowStart time.Time
	WindowEnd   time.Time
	Summary     analytics.Summary
}
