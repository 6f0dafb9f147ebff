// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor with real I/O.
// Notification failures are logged and never returned: a fired stage stays fired.
type DefaultEffectExecutor struct {
	notifier    secondary.Notifier
	requestRepo secondary.RequestRepository
	logger      *zap.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(notifier secondary.Notifier, requestRepo secondary.RequestRepository, logger *zap.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultEffectExecutor{
		notifier:    notifier,
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.NotifyEffect:
		if err := e.notifier.Notify(ctx, typed.Channel, typed.Target, typed.Payload); err != nil {
			e.logger.Error("notify dispatch failed",
				zap.String("tenant_id", typed.Payload.TenantID),
				zap.String("request_id", typed.Payload.RequestID),
				zap.String("stage", string(typed.Payload.Stage)),
				zap.String("channel", string(typed.Channel)),
				zap.Error(err))
		}
		return nil
	case effects.BroadcastEffect:
		if err := e.notifier.Broadcast(ctx, typed.Payload); err != nil {
			e.logger.Error("broadcast dispatch failed",
				zap.String("tenant_id", typed.Payload.TenantID),
				zap.String("request_id", typed.Payload.RequestID),
				zap.Error(err))
		}
		return nil
	case effects.ReassignEffect:
		return e.executeReassign(ctx, typed)
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.executeLog(typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeReassign(ctx context.Context, eff effects.ReassignEffect) error {
	err := e.requestRepo.UpdateAssignee(ctx, eff.RequestID, eff.ToHandler)
	if errors.Is(err, secondary.ErrStatusConflict) {
		// Acknowledged or closed while we were planning; nothing to hand over.
		e.logger.Info("reassign skipped: request no longer open", zap.String("request_id", eff.RequestID))
		return nil
	}
	if err != nil {
		return err
	}
	e.logger.Info("request reassigned",
		zap.String("request_id", eff.RequestID),
		zap.String("from_handler", eff.FromHandler),
		zap.String("to_handler", eff.ToHandler))
	return nil
}

func (e *DefaultEffectExecutor) executeLog(eff effects.LogEffect) {
	fields := make([]zap.Field, 0, len(eff.Fields))
	for k, v := range eff.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch eff.Level {
	case "debug":
		e.logger.Debug(eff.Message, fields...)
	case "warn":
		e.logger.Warn(eff.Message, fields...)
	case "error":
		e.logger.Error(eff.Message, fields...)
	default:
		e.logger.Info(eff.Message, fields...)
	}
}

