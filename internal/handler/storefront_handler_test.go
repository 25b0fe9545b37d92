package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func lookupContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/store/acme", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStoreLookupErrorMissingRowIs404(t *testing.T) {
	c, rec := lookupContext(t)
	require.NoError(t, storeLookupError(c, gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreLookupErrorTransientFailureIs500(t *testing.T) {
	// A flaky connection must not look like a missing store.
	c, rec := lookupContext(t)
	require.NoError(t, storeLookupError(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "not found")
}

func TestDuplicateKeyDetection(t *testing.T) {
	assert.True(t, duplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, duplicateKey(fmt.Errorf("create store: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, duplicateKey(gorm.ErrRecordNotFound))
	assert.False(t, duplicateKey(assert.AnError))
	assert.False(t, duplicateKey(nil))
}
