package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/activity"
	"storefront-service/internal/gate"
	"storefront-service/internal/model"
	"storefront-service/internal/role"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// ProductRequest is the payload for catalog writes. Prices are integer cents.
type ProductRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=120"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	Specs           *string `json:"specs" validate:"omitempty,max=5000"`
	SKU             *string `json:"sku" validate:"omitempty,max=80"`
	Currency        string  `json:"currency" validate:"required,min=2,max=8"`
	OriginalPrice   int64   `json:"original_price" validate:"gte=0"`
	DiscountedPrice *int64  `json:"discounted_price" validate:"omitempty,gte=0"`
	DiscountEnabled bool    `json:"discount_enabled"`
	StockQty        int     `json:"stock_qty" validate:"gte=0,lte=1000000"`
	IsActive        bool    `json:"is_active"`
}

// ProductHandler covers the tenant-scoped catalog. Writes require EDITOR,
// reads VIEWER; product ids are always checked against the resolved store so
// a cross-tenant probe looks identical to a missing product.
type ProductHandler struct {
	db   *gorm.DB
	gate *gate.Gate
}

func NewProductHandler(db *gorm.DB, g *gate.Gate) *ProductHandler {
	return &ProductHandler{db: db, gate: g}
}

// applyDiscountRule clears the discounted price when the discount is off and
// rejects a discount above the original price.
func applyDiscountRule(req *ProductRequest) error {
	if !req.DiscountEnabled {
		req.DiscountedPrice = nil
		return nil
	}
	if req.DiscountedPrice != nil && *req.DiscountedPrice > req.OriginalPrice {
		return errors.New("discounted price exceeds original price")
	}
	return nil
}

// Create handles POST /api/stores/:slug/products
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Editor)
	if err != nil {
		return gate.Respond(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product data"})
	}
	if err := applyDiscountRule(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	product := model.Product{
		StoreID:         ctx.StoreID,
		Name:            req.Name,
		Description:     req.Description,
		Specs:           req.Specs,
		SKU:             req.SKU,
		Currency:        req.Currency,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		DiscountEnabled: req.DiscountEnabled,
		StockQty:        req.StockQty,
		IsActive:        req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product creation failed"})
	}

	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        model.ActivityProductCreated,
		EntityType:  "product",
		EntityID:    product.ID,
	}); err != nil {
		log.Warn("Failed to record product activity", zap.Error(err))
	}

	log.Info("Product created",
		zap.Uint("store_id", ctx.StoreID),
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name))
	return c.JSON(http.StatusCreated, product)
}

// List handles GET /api/stores/:slug/products
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	query := h.db.Where("store_id = ?", ctx.StoreID)
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if result := query.Order("created_at DESC").Find(&products); result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Get handles GET /api/stores/:slug/products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	var product model.Product
	result := h.db.Where("id = ? AND store_id = ?", c.Param("id"), ctx.StoreID).First(&product)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// Update handles PUT /api/stores/:slug/products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Editor)
	if err != nil {
		return gate.Respond(c, err)
	}

	var existing model.Product
	result := h.db.Where("id = ? AND store_id = ?", c.Param("id"), ctx.StoreID).First(&existing)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product data"})
	}
	if err := applyDiscountRule(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	priceChanged := existing.OriginalPrice != req.OriginalPrice
	visibilityChanged := existing.IsActive != req.IsActive

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Specs = req.Specs
	existing.SKU = req.SKU
	existing.Currency = req.Currency
	existing.OriginalPrice = req.OriginalPrice
	existing.DiscountedPrice = req.DiscountedPrice
	existing.DiscountEnabled = req.DiscountEnabled
	existing.StockQty = req.StockQty
	existing.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&existing).Error; err != nil {
		log.Error("Failed to update product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product update failed"})
	}

	activityType := model.ActivityProductUpdated
	if priceChanged {
		activityType = model.ActivityProductPriceChanged
	} else if visibilityChanged {
		activityType = model.ActivityProductVisibilityChanged
	}
	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        activityType,
		EntityType:  "product",
		EntityID:    existing.ID,
	}); err != nil {
		log.Warn("Failed to record product activity", zap.Error(err))
	}

	return c.JSON(http.StatusOK, existing)
}

// Delete handles DELETE /api/stores/:slug/products/:id
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Editor)
	if err != nil {
		return gate.Respond(c, err)
	}

	var product model.Product
	result := h.db.Where("id = ? AND store_id = ?", c.Param("id"), ctx.StoreID).First(&product)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&product).Error; err != nil {
		log.Error("Failed to delete product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product deletion failed"})
	}

	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        model.ActivityProductDeleted,
		EntityType:  "product",
		EntityID:    product.ID,
	}); err != nil {
		log.Warn("Failed to record product activity", zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}
