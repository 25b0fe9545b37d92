package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/activity"
	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// StorefrontHandler serves the public, unauthenticated side of a store:
// catalog browsing, visit tracking and customer inquiries.
type StorefrontHandler struct {
	db *gorm.DB
}

func NewStorefrontHandler(db *gorm.DB) *StorefrontHandler {
	return &StorefrontHandler{db: db}
}

func (h *StorefrontHandler) findStore(slug string) (*model.Store, error) {
	var store model.Store
	result := h.db.Where("slug = ?", slug).First(&store)
	if result.Error != nil {
		return nil, result.Error
	}
	return &store, nil
}

// storeLookupError answers a failed public store lookup. Only a missing row
// becomes 404; transient database failures must not masquerade as NotFound.
func storeLookupError(c echo.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	logger.FromContext(c).Error("Store lookup failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load store"})
}

// GetStorefront handles GET /store/:slug. The public store page: active
// products plus presentation settings.
func (h *StorefrontHandler) GetStorefront(c echo.Context) error {
	log := logger.FromContext(c)

	store, err := h.findStore(c.Param("slug"))
	if err != nil {
		return storeLookupError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if result := h.db.Where("store_id = ? AND is_active = ?", store.ID, true).
		Order("created_at DESC").Find(&products); result.Error != nil {
		log.Error("Failed to load storefront products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load store"})
	}

	var settings model.StoreSettings
	h.db.Where("store_id = ?", store.ID).First(&settings)

	return c.JSON(http.StatusOK, echo.Map{
		"store": echo.Map{
			"slug": store.Slug,
			"name": store.Name,
		},
		"settings": settings,
		"products": products,
	})
}

// GetProduct handles GET /store/:slug/products/:id and bumps the product's
// view counter.
func (h *StorefrontHandler) GetProduct(c echo.Context) error {
	store, err := h.findStore(c.Param("slug"))
	if err != nil {
		return storeLookupError(c, err)
	}

	var product model.Product
	result := h.db.Where("id = ? AND store_id = ? AND is_active = ?", c.Param("id"), store.ID, true).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		logger.FromContext(c).Error("Product lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load product"})
	}

	h.db.Model(&model.Product{}).Where("id = ?", product.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	return c.JSON(http.StatusOK, product)
}

// TrackVisit handles POST /store/:slug/track.
func (h *StorefrontHandler) TrackVisit(c echo.Context) error {
	store, err := h.findStore(c.Param("slug"))
	if err != nil {
		return storeLookupError(c, err)
	}

	prometheus.VisitCounter.Inc()
	result := h.db.Model(&model.StoreStat{}).Where("store_id = ?", store.ID).
		UpdateColumn("visit_count", gorm.Expr("visit_count + 1"))
	if result.RowsAffected == 0 {
		h.db.Create(&model.StoreStat{StoreID: store.ID, VisitCount: 1})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// SendMessage handles POST /store/:slug/messages, a customer inquiry. The
// customer record is deduplicated per store by lower-cased email.
func (h *StorefrontHandler) SendMessage(c echo.Context) error {
	log := logger.FromContext(c)

	store, err := h.findStore(c.Param("slug"))
	if err != nil {
		return storeLookupError(c, err)
	}

	var req struct {
		Name    string  `json:"name" validate:"required,min=2,max=80"`
		Email   string  `json:"email" validate:"required,email"`
		Phone   *string `json:"phone" validate:"omitempty,max=40"`
		Message string  `json:"message" validate:"required,min=2,max=2000"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message are required"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	prometheus.InquiryCounter.Inc()

	defer prometheus.TrackDBOperation("insert")(time.Now())
	var msg model.Message
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		result := tx.Where("store_id = ? AND email = ?", store.ID, email).First(&customer)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			customer = model.Customer{StoreID: store.ID, Email: email, Name: req.Name, Phone: req.Phone}
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
		} else {
			customer.Name = req.Name
			customer.Phone = req.Phone
			if err := tx.Save(&customer).Error; err != nil {
				return err
			}
		}

		msg = model.Message{StoreID: store.ID, CustomerID: customer.ID, Content: req.Message}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		result = tx.Model(&model.StoreStat{}).Where("store_id = ?", store.ID).
			UpdateColumn("message_count", gorm.Expr("message_count + 1"))
		if result.RowsAffected == 0 {
			if err := tx.Create(&model.StoreStat{StoreID: store.ID, MessageCount: 1}).Error; err != nil {
				return err
			}
		}

		return activity.Log(tx, activity.Entry{
			StoreID:    store.ID,
			Type:       model.ActivityMessageReceived,
			EntityType: "message",
			EntityID:   msg.ID,
		})
	})
	if err != nil {
		log.Error("Failed to record inquiry", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "message could not be sent"})
	}

	log.Info("Inquiry received", zap.Uint("store_id", store.ID), zap.Uint("message_id", msg.ID))
	return c.JSON(http.StatusCreated, echo.Map{"ok": true})
}
