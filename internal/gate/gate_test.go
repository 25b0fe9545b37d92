package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/role"
)

type fakeIdentity struct {
	userID uint
	ok     bool
}

func (f fakeIdentity) UserID(c echo.Context) (uint, bool) {
	return f.userID, f.ok
}

// fakeResolver resolves against an in-memory membership table:
// slug -> userID -> role.
type fakeResolver struct {
	stores map[string]map[uint]role.Role
	calls  int
}

func (f *fakeResolver) ResolveMembership(storeSlug string, userID uint) (*TenantContext, error) {
	f.calls++
	members, ok := f.stores[storeSlug]
	if !ok {
		return nil, ErrNotFound
	}
	r, ok := members[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &TenantContext{
		UserID:    userID,
		StoreID:   1,
		StoreSlug: storeSlug,
		StoreName: storeSlug,
		Role:      r,
	}, nil
}

func testContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/stores/acme/products", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireStoreAccessAuthorized(t *testing.T) {
	resolver := &fakeResolver{stores: map[string]map[uint]role.Role{
		"acme": {1: role.Owner},
	}}
	g := New(fakeIdentity{userID: 1, ok: true}, resolver)

	ctx, err := g.RequireStoreAccess(testContext(), "acme", role.Owner)
	require.NoError(t, err)
	assert.Equal(t, uint(1), ctx.UserID)
	assert.Equal(t, "acme", ctx.StoreSlug)
	assert.Equal(t, role.Owner, ctx.Role)
}

func TestRequireStoreAccessUnauthenticated(t *testing.T) {
	resolver := &fakeResolver{stores: map[string]map[uint]role.Role{
		"acme": {1: role.Owner},
	}}
	g := New(fakeIdentity{ok: false}, resolver)

	_, err := g.RequireStoreAccess(testContext(), "acme", role.Viewer)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	// The tenant lookup never runs for an unauthenticated caller.
	assert.Equal(t, 0, resolver.calls)
}

func TestRequireStoreAccessForbidden(t *testing.T) {
	resolver := &fakeResolver{stores: map[string]map[uint]role.Role{
		"acme": {2: role.Viewer},
	}}
	g := New(fakeIdentity{userID: 2, ok: true}, resolver)

	// A viewer asking for editor rank is rejected, repeatably: the check has
	// no side effects.
	for i := 0; i < 3; i++ {
		_, err := g.RequireStoreAccess(testContext(), "acme", role.Editor)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	// The same membership passes a viewer requirement.
	ctx, err := g.RequireStoreAccess(testContext(), "acme", role.Viewer)
	require.NoError(t, err)
	assert.Equal(t, role.Viewer, ctx.Role)
}

func TestRequireStoreAccessNotFoundIndistinguishable(t *testing.T) {
	resolver := &fakeResolver{stores: map[string]map[uint]role.Role{
		"acme": {1: role.Owner},
	}}

	// Non-member of an existing store.
	g := New(fakeIdentity{userID: 99, ok: true}, resolver)
	_, errMember := g.RequireStoreAccess(testContext(), "acme", role.Viewer)

	// Store that never existed.
	_, errGhost := g.RequireStoreAccess(testContext(), "ghost", role.Viewer)

	// Both legs produce the same rejection so store existence cannot be
	// probed.
	assert.ErrorIs(t, errMember, ErrNotFound)
	assert.ErrorIs(t, errGhost, ErrNotFound)
	assert.Equal(t, errMember, errGhost)
}

func TestGrantedEditorScenario(t *testing.T) {
	// Owner A on "acme"; B granted EDITOR.
	resolver := &fakeResolver{stores: map[string]map[uint]role.Role{
		"acme": {1: role.Owner, 2: role.Editor},
	}}

	gB := New(fakeIdentity{userID: 2, ok: true}, resolver)
	_, err := gB.RequireStoreAccess(testContext(), "acme", role.Editor)
	assert.NoError(t, err)

	_, err = gB.RequireStoreAccess(testContext(), "acme", role.Owner)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRespondStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrCSRFMismatch, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/stores/acme", nil), rec)
		require.NoError(t, Respond(c, tc.err))
		assert.Equal(t, tc.status, rec.Code, "for %v", tc.err)
	}
}

func TestRespondUnauthenticatedIncludesLoginHint(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/stores/acme", nil), rec)

	require.NoError(t, Respond(c, ErrUnauthenticated))
	assert.Contains(t, rec.Body.String(), "/login?next=/api/stores/acme")
}
