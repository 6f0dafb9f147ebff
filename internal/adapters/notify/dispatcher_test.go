package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
)

type recordingSender struct {
	mu    sync.Mutex
	msgs  []Message
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func closeNow(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	sms := &recordingSender{}
	fallback := &recordingSender{}
	d := NewDispatcher(map[string]Sender{"sms": sms}, fallback, Options{}, zap.NewNop())

	payload := effects.Payload{RequestID: "REQ-1", TenantID: "hotel-1", Stage: policy.StageReminder}
	require.NoError(t, d.Notify(context.Background(), policy.ChannelSMS, "staff-1", payload))
	require.NoError(t, d.Notify(context.Background(), policy.ChannelEmail, "boss-1", payload))
	require.NoError(t, d.Broadcast(context.Background(), payload))
	closeNow(t, d)

	smsMsgs := sms.messages()
	require.Len(t, smsMsgs, 1)
	assert.Equal(t, "staff-1", smsMsgs[0].Target)
	assert.NotEmpty(t, smsMsgs[0].ID)

	fb := fallback.messages()
	require.Len(t, fb, 2, "email and broadcast have no sender and use the fallback")
	var sawBroadcast bool
	for _, m := range fb {
		if m.Broadcast {
			sawBroadcast = true
			assert.Equal(t, "hotel-1", m.Target)
		}
	}
	assert.True(t, sawBroadcast)
}

func TestDispatcher_DoesNotBlockCaller(t *testing.T) {
	slow := &recordingSender{delay: 200 * time.Millisecond}
	d := NewDispatcher(nil, slow, Options{Timeout: time.Second}, zap.NewNop())

	start := time.Now()
	require.NoError(t, d.Notify(context.Background(), policy.ChannelPush, "staff-1", effects.Payload{}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	closeNow(t, d)
	assert.Len(t, slow.messages(), 1, "Close drains in-flight dispatches")
}

func TestDispatcher_OutlivesCallerContext(t *testing.T) {
	slow := &recordingSender{delay: 50 * time.Millisecond}
	d := NewDispatcher(nil, slow, Options{Timeout: time.Second}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Notify(ctx, policy.ChannelPush, "staff-1", effects.Payload{}))
	cancel()

	closeNow(t, d)
	assert.Len(t, slow.messages(), 1)
}

func TestDispatcher_FailuresAreSwallowedAndTripBreaker(t *testing.T) {
	failing := &recordingSender{err: errors.New("provider down")}
	d := NewDispatcher(nil, failing, Options{FailureThreshold: 2, BreakerTimeout: time.Hour}, zap.NewNop())

	for i := 0; i < 5; i++ {
		// Sequential so the breaker sees the failures in order.
		require.NoError(t, d.Notify(context.Background(), policy.ChannelPush, "staff-1", effects.Payload{}))
		waitFor(t, func() bool { return int(failing.calls.Load()) >= min(i+1, 2) })
		time.Sleep(10 * time.Millisecond)
	}
	closeNow(t, d)

	assert.Equal(t, int32(2), failing.calls.Load(), "open circuit must stop calling the provider")
}

func TestDispatcher_ClosedRejects(t *testing.T) {
	d := NewDispatcher(nil, &recordingSender{}, Options{}, zap.NewNop())
	closeNow(t, d)

	err := d.Notify(context.Background(), policy.ChannelPush, "staff-1", effects.Payload{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Broadcast(context.Background(), effects.Payload{}), ErrClosed)
}

func TestDispatcher_CloseHonorsDeadline(t *testing.T) {
	stuck := &recordingSender{delay: time.Hour}
	d := NewDispatcher(nil, stuck, Options{Timeout: time.Hour}, zap.NewNop())
	require.NoError(t, d.Notify(context.Background(), policy.ChannelPush, "staff-1", effects.Payload{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
