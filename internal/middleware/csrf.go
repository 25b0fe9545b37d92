package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/gate"
	"storefront-service/internal/session"
	"storefront-service/prometheus"
)

// CSRFHeader is the header clients set from the script-readable csrf_token
// cookie; form submissions may send the same value as the "csrf" field.
const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware enforces the double-submit check on state-changing methods.
// It runs before any session semantics matter: a missing or mismatched token
// rejects the mutation even when the session itself is valid.
func CSRFMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}

		cookie, err := c.Cookie(session.CSRFCookie)
		if err != nil || cookie.Value == "" {
			prometheus.RecordAuthError("csrf_missing_cookie")
			return gate.Respond(c, gate.ErrCSRFMismatch)
		}

		supplied := c.Request().Header.Get(CSRFHeader)
		if supplied == "" {
			supplied = c.FormValue("csrf")
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(cookie.Value)) != 1 {
			prometheus.RecordAuthError("csrf_mismatch")
			return gate.Respond(c, gate.ErrCSRFMismatch)
		}

		return next(c)
	}
}
