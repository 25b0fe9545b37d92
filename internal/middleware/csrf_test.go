package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"storefront-service/internal/session"
)

func runCSRF(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := CSRFMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCSRFRejectsMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stores", nil)
	rec := runCSRF(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	// Even with a (hypothetically) valid session, a wrong token rejects the
	// mutation: the two credentials are independent.
	req := httptest.NewRequest(http.MethodPost, "/api/stores", nil)
	req.AddCookie(&http.Cookie{Name: session.CSRFCookie, Value: "expected-token"})
	req.Header.Set(CSRFHeader, "some-other-token")
	rec := runCSRF(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stores", nil)
	req.AddCookie(&http.Cookie{Name: session.CSRFCookie, Value: "expected-token"})
	rec := runCSRF(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsMatchingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stores", nil)
	req.AddCookie(&http.Cookie{Name: session.CSRFCookie, Value: "expected-token"})
	req.Header.Set(CSRFHeader, "expected-token")
	rec := runCSRF(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRFAcceptsMatchingFormField(t *testing.T) {
	form := url.Values{"csrf": {"expected-token"}}
	req := httptest.NewRequest(http.MethodPost, "/api/stores", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: session.CSRFCookie, Value: "expected-token"})
	rec := runCSRF(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRFSkipsSafeMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/api/stores", nil)
		rec := runCSRF(t, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, method)
	}
}
