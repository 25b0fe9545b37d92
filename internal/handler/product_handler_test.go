package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestApplyDiscountRule(t *testing.T) {
	t.Run("discount disabled clears price", func(t *testing.T) {
		req := ProductRequest{OriginalPrice: 1000, DiscountedPrice: int64p(800)}
		require.NoError(t, applyDiscountRule(&req))
		assert.Nil(t, req.DiscountedPrice)
	})

	t.Run("discount below original accepted", func(t *testing.T) {
		req := ProductRequest{OriginalPrice: 1000, DiscountEnabled: true, DiscountedPrice: int64p(800)}
		require.NoError(t, applyDiscountRule(&req))
		require.NotNil(t, req.DiscountedPrice)
		assert.Equal(t, int64(800), *req.DiscountedPrice)
	})

	t.Run("discount above original rejected", func(t *testing.T) {
		req := ProductRequest{OriginalPrice: 1000, DiscountEnabled: true, DiscountedPrice: int64p(1200)}
		assert.Error(t, applyDiscountRule(&req))
	})

	t.Run("discount equal to original accepted", func(t *testing.T) {
		req := ProductRequest{OriginalPrice: 1000, DiscountEnabled: true, DiscountedPrice: int64p(1000)}
		assert.NoError(t, applyDiscountRule(&req))
	})

	t.Run("enabled discount without price accepted", func(t *testing.T) {
		req := ProductRequest{OriginalPrice: 1000, DiscountEnabled: true}
		assert.NoError(t, applyDiscountRule(&req))
	})
}

func TestValidatorRejectsBadProduct(t *testing.T) {
	v := NewValidator()

	assert.Error(t, v.Validate(&ProductRequest{Name: "x", Currency: "USD"}))
	assert.Error(t, v.Validate(&ProductRequest{Name: "Widget", Currency: "U"}))
	assert.NoError(t, v.Validate(&ProductRequest{Name: "Widget", Currency: "USD", OriginalPrice: 100}))
}
