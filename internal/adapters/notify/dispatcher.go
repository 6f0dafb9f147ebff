// Package notify implements secondary.Notifier.
//
// Every Notify or Broadcast call is dispatched in its own goroutine and
// returns immediately. Each route (channel, or broadcast) has its own rate
// limiter and circuit breaker so that one failing provider cannot slow the
// others down. Delivery failures are logged and counted, never returned.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/bellhop/internal/config"
	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/metrics"
	"github.com/example/bellhop/internal/ports/secondary"
)

// ErrClosed is returned by Notify and Broadcast after Close.
var ErrClosed = errors.New("dispatcher closed")

// RouteBroadcast is the route name of tenant-wide broadcasts.
const RouteBroadcast = "broadcast"

// Options tune delivery.
type Options struct {
	Timeout       time.Duration // per attempt, including any rate-limit wait
	RatePerSecond float64       // 0 disables limiting
	Burst         int
	// Breaker trips after this many consecutive failures on a route.
	FailureThreshold uint32
	// BreakerTimeout is how long a tripped breaker rejects before probing again.
	BreakerTimeout time.Duration
}

// Dispatcher fans notifications out to per-route senders.
type Dispatcher struct {
	routes   map[string]*route
	fallback *route
	opts     Options
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type route struct {
	name    string
	sender  Sender
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewDispatcher creates a dispatcher. senders is keyed by channel name or RouteBroadcast;
// routes without a sender use fallback.
func NewDispatcher(senders map[string]Sender, fallback Sender, opts Options, logger *zap.Logger) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		routes: make(map[string]*route),
		opts:   opts,
		logger: logger,
	}
	for name, sender := range senders {
		d.routes[name] = d.newRoute(name, sender)
	}
	d.fallback = d.newRoute("fallback", fallback)
	return d
}

// FromConfig builds a dispatcher with webhook senders for every configured URL
// and a log sender for the rest.
func FromConfig(cfg config.DispatchConfig, logger *zap.Logger) *Dispatcher {
	senders := map[string]Sender{}
	add := func(name, url string) {
		if url != "" {
			senders[name] = NewWebhookSender(url, nil)
		}
	}
	add(string(policy.ChannelPush), cfg.Webhooks.Push)
	add(string(policy.ChannelSMS), cfg.Webhooks.SMS)
	add(string(policy.ChannelEmail), cfg.Webhooks.Email)
	add(string(policy.ChannelDashboard), cfg.Webhooks.Dashboard)
	add(RouteBroadcast, cfg.Webhooks.Broadcast)

	return NewDispatcher(senders, NewLogSender(logger), Options{
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
	}, logger)
}

func (d *Dispatcher) newRoute(name string, sender Sender) *route {
	limit := rate.Inf
	if d.opts.RatePerSecond > 0 {
		limit = rate.Limit(d.opts.RatePerSecond)
	}
	burst := d.opts.Burst
	if burst <= 0 {
		burst = 1
	}

	threshold := d.opts.FailureThreshold
	logger := d.logger
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     d.opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("dispatch circuit state changed",
				zap.String("route", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &route{
		name:    name,
		sender:  sender,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
	}
}

// Notify dispatches payload to target over channel.
func (d *Dispatcher) Notify(ctx context.Context, channel policy.Channel, target string, payload effects.Payload) error {
	r, ok := d.routes[string(channel)]
	if !ok {
		r = d.fallback
	}
	return d.dispatch(ctx, r, Message{
		ID:      uuid.NewString(),
		Channel: channel,
		Target:  target,
		Payload: payload,
	})
}

// Broadcast dispatches payload to every staff device of its tenant.
func (d *Dispatcher) Broadcast(ctx context.Context, payload effects.Payload) error {
	r, ok := d.routes[RouteBroadcast]
	if !ok {
		r = d.fallback
	}
	return d.dispatch(ctx, r, Message{
		ID:        uuid.NewString(),
		Target:    payload.TenantID,
		Broadcast: true,
		Payload:   payload,
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, r *route, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// The caller's context usually ends with the evaluation pass; delivery outlives it.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		defer cancel()
		d.deliver(sendCtx, r, msg)
	}()
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, r *route, msg Message) {
	label := string(msg.Channel)
	if msg.Broadcast {
		label = RouteBroadcast
	}
	fields := []zap.Field{
		zap.String("dispatch_id", msg.ID),
		zap.String("route", r.name),
		zap.String("channel", label),
		zap.String("target", msg.Target),
		zap.String("tenant_id", msg.Payload.TenantID),
		zap.String("request_id", msg.Payload.RequestID),
		zap.String("stage", string(msg.Payload.Stage)),
	}

	if err := r.limiter.Wait(ctx); err != nil {
		metrics.Dispatches.WithLabelValues(label, metrics.ResultThrottled).Inc()
		d.logger.Warn("dispatch throttled", append(fields, zap.Error(err))...)
		return
	}

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.sender.Send(ctx, msg)
	})
	switch {
	case err == nil:
		metrics.Dispatches.WithLabelValues(label, metrics.ResultSent).Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.Dispatches.WithLabelValues(label, metrics.ResultRejected).Inc()
		d.logger.Warn("dispatch rejected by open circuit", fields...)
	default:
		metrics.Dispatches.WithLabelValues(label, metrics.ResultFailed).Inc()
		d.logger.Error("dispatch failed", append(fields, zap.Error(err))...)
	}
}

// Close stops accepting dispatches and waits for in-flight ones until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ensure Dispatcher implements the interface
var _ secondary.Notifier = (*Dispatcher)(nil)
