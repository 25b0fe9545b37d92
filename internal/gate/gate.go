package gate

import (
	"errors"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/role"
	"storefront-service/prometheus"
)

// Identity resolves the caller's user id from the request's credential
// material. Satisfied by *session.Manager.
type Identity interface {
	UserID(c echo.Context) (uint, bool)
}

// Gate is the single authorization choke point for tenant-scoped operations.
// Every store-scoped read or write goes through RequireStoreAccess before
// touching store data; nothing downstream re-derives identity on its own.
type Gate struct {
	sessions Identity
	resolver MembershipResolver
}

func New(sessions Identity, resolver MembershipResolver) *Gate {
	return &Gate{sessions: sessions, resolver: resolver}
}

// RequireStoreAccess runs the three sequential checks: session, tenant
// resolution, role sufficiency. The first failure is terminal. Checking has
// no side effects, so repeated calls for the same request are idempotent.
func (g *Gate) RequireStoreAccess(c echo.Context, storeSlug string, atLeast role.Role) (*TenantContext, error) {
	userID, ok := g.sessions.UserID(c)
	if !ok {
		prometheus.RecordGateCheck("unauthenticated")
		return nil, ErrUnauthenticated
	}

	ctx, err := g.resolver.ResolveMembership(storeSlug, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			prometheus.RecordGateCheck("not_found")
		} else {
			prometheus.RecordGateCheck("error")
		}
		return nil, err
	}

	if !role.AtLeast(atLeast, ctx.Role) {
		prometheus.RecordGateCheck("forbidden")
		return nil, ErrForbidden
	}

	prometheus.RecordGateCheck("authorized")
	return ctx, nil
}
