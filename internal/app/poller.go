package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/bellhop/internal/ports/primary"
)

// Poller drives the escalation engine on a fixed interval until its context ends.
type Poller struct {
	engine   primary.EscalationEngine
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewPoller creates a Poller.
func NewPoller(engine primary.EscalationEngine, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{engine: engine, interval: interval, logger: logger, now: time.Now}
}

// Run evaluates immediately, then once per interval. It returns nil when ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("escalation poller started", zap.Duration("interval", p.interval))
	for {
		p.Tick(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("escalation poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one evaluation pass. Errors are logged; the next tick tries again.
func (p *Poller) Tick(ctx context.Context) *primary.EvaluationResult {
	result, err := p.engine.EvaluateAll(ctx, p.now())
	if err != nil {
		p.logger.Error("evaluation pass failed", zap.Error(err))
	}
	if result != nil && (len(result.Fired) > 0 || len(result.Skipped) > 0) {
		p.logger.Info("evaluation pass",
			zap.Int("evaluated", result.Evaluated),
			zap.Int("fired", len(result.Fired)),
			zap.Int("skipped_tenants", len(result.Skipped)))
	}
	return result
}
