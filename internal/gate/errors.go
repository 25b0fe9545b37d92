package gate

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/pkg/logger"
)

// Rejection kinds produced by the access gate. All are terminal for the
// request: no retry, no partial authorization, no downgrade to a lower role.
var (
	// ErrUnauthenticated means no valid session; the caller should be sent
	// to the login entry point. Expected traffic, never logged as an error.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound covers both an unknown store slug and a missing
	// membership. The two are deliberately indistinguishable so that
	// non-members cannot enumerate which stores exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is a member whose role ranks below the
	// requirement. Distinct from ErrNotFound: at this point the store and
	// the caller's own membership are facts the caller is entitled to know.
	ErrForbidden = errors.New("access denied")

	// ErrCSRFMismatch means a state-changing request arrived without a
	// matching anti-forgery token, regardless of session validity.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
)

// Respond translates a gate rejection into the HTTP response surface.
// Anything outside the taxonomy is a transient failure and surfaces as a
// generic 500, never masked as not-found.
func Respond(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		next := c.Request().URL.Path
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "authentication required",
			"login": "/login?next=" + next,
		})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	case errors.Is(err, ErrCSRFMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid csrf token"})
	default:
		logger.FromContext(c).Error("Gate check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
