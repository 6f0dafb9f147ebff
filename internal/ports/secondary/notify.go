package secondary

import (
	"context"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
)

// Notifier defines the secondary port for notification delivery.
// Calls are fire-and-forget: a nil error means the dispatch was attempted,
// not that it was delivered. Delivery failures are the adapter's concern.
type Notifier interface {
	// Notify sends payload to one target over one channel.
	Notify(ctx context.Context, channel policy.Channel, target string, payload effects.Payload) error

	// Broadcast reaches every staff device of payload.TenantID.
	Broadcast(ctx context.Context, payload effects.Payload) error
}
