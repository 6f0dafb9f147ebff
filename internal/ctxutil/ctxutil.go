// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// TenantKey is the context key for the tenant a call acts on.
type TenantKey struct{}

// ActorKey is the context key for the staff member issuing a call.
type ActorKey struct{}

// WithTenantID returns a context with the tenant ID embedded.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantKey{}, tenantID)
}

// TenantFromContext returns the tenant ID from context, or empty string if not set.
func TenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TenantKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActorID returns a context with the acting staff ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}
