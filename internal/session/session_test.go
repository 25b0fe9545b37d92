package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/pkg/config"
)

func testManager(expirationHours int) *Manager {
	return NewManager(&config.Config{
		Session: config.SessionConfig{
			SigningKey:      "test-signing-key-for-sessions",
			ExpirationHours: expirationHours,
		},
	})
}

func TestSignVerifyRoundTrip(t *testing.T) {
	m := testManager(24 * 7)

	token, err := m.Sign(42)
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyTamperedToken(t *testing.T) {
	m := testManager(24 * 7)

	token, err := m.Sign(42)
	require.NoError(t, err)

	// Flipping a single byte anywhere must fail verification, never resolve
	// to a different user.
	for _, i := range []int{0, len(token) / 2, len(token) - 1} {
		tampered := []byte(token)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		_, err := m.Verify(string(tampered))
		assert.Error(t, err, "tampered at byte %d", i)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := testManager(-1)

	token, err := m.Sign(42)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyWrongKey(t *testing.T) {
	m := testManager(24)
	other := NewManager(&config.Config{
		Session: config.SessionConfig{SigningKey: "a-different-key-entirely", ExpirationHours: 24},
	})

	token, err := m.Sign(7)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestSessionCookieLifecycle(t *testing.T) {
	m := testManager(24 * 7)
	e := echo.New()

	// Issue the cookie.
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), rec)
	require.NoError(t, m.SetSessionCookie(c, 9))

	var issued *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookie {
			issued = cookie
		}
	}
	require.NotNil(t, issued)
	assert.True(t, issued.HttpOnly)
	assert.Equal(t, "/", issued.Path)

	// Present it back.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(issued)
	c = e.NewContext(req, httptest.NewRecorder())

	userID, ok := m.UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(9), userID)
}

func TestUserIDWithoutCookie(t *testing.T) {
	m := testManager(24 * 7)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/me", nil), httptest.NewRecorder())

	_, ok := m.UserID(c)
	assert.False(t, ok)
}

func TestEnsureCSRFCookie(t *testing.T) {
	m := testManager(24 * 7)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), rec)
	token := m.EnsureCSRFCookie(c)
	require.NotEmpty(t, token)

	var issued *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CSRFCookie {
			issued = cookie
		}
	}
	require.NotNil(t, issued)
	// Double-submit: the client script must be able to read it.
	assert.False(t, issued.HttpOnly)
	assert.Equal(t, token, issued.Value)

	// An existing cookie is kept, not regenerated.
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.AddCookie(issued)
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, token, m.EnsureCSRFCookie(c))
}
