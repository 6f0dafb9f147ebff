// Package context resolves the tenant a CLI invocation acts on.
package context

import (
	gocontext "context"
	"errors"
	"os"
	"strings"

	"github.com/example/bellhop/internal/ctxutil"
)

// TenantEnv names the environment variable consulted when --tenant is not given.
const TenantEnv = "BELLHOP_TENANT"

// ErrNoTenant is returned when neither the flag nor the environment names a tenant.
var ErrNoTenant = errors.New("no tenant: pass --tenant or set " + TenantEnv)

// ResolveTenant returns the tenant from the flag value, falling back to BELLHOP_TENANT.
func ResolveTenant(flagValue string) (string, error) {
	if t := strings.TrimSpace(flagValue); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(os.Getenv(TenantEnv)); t != "" {
		return t, nil
	}
	return "", ErrNoTenant
}

// WithTenant resolves the tenant and embeds it in ctx.
func WithTenant(ctx gocontext.Context, flagValue string) (gocontext.Context, error) {
	tenantID, err := ResolveTenant(flagValue)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithTenantID(ctx, tenantID), nil
}

// TenantFromContext returns the tenant embedded by WithTenant.
// This is a convenience wrapper around ctxutil.TenantFromContext.
func TenantFromContext(ctx gocontext.Context) string {
	return ctxutil.TenantFromContext(ctx)
}
