package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/activity"
	"storefront-service/internal/gate"
	"storefront-service/internal/model"
	"storefront-service/internal/role"
	"storefront-service/internal/session"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// StoreHandler covers store creation, the caller's store list, the dashboard
// summary and store settings.
type StoreHandler struct {
	db       *gorm.DB
	sessions *session.Manager
	gate     *gate.Gate
}

func NewStoreHandler(db *gorm.DB, sessions *session.Manager, g *gate.Gate) *StoreHandler {
	return &StoreHandler{db: db, sessions: sessions, gate: g}
}

// duplicateKey reports whether err is a unique-index violation, surfaced by
// the driver through gorm's error translation.
func duplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// CreateStore handles POST /api/stores. The creator receives the OWNER
// membership in the same transaction that creates the store.
func (h *StoreHandler) CreateStore(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := h.sessions.UserID(c)
	if !ok {
		return gate.Respond(c, gate.ErrUnauthenticated)
	}

	var req struct {
		Name string `json:"name" validate:"required,min=2,max=80"`
		Slug string `json:"slug" validate:"omitempty,min=2,max=80"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	desired := req.Slug
	if desired == "" {
		desired = req.Name
	}
	storeSlug := slug.Make(desired)
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug cannot be derived from name"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.Store
	if result := h.db.Where("slug = ?", storeSlug).First(&existing); result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already taken"})
	}

	store := model.Store{Slug: storeSlug, Name: req.Name}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		settings := model.StoreSettings{
			StoreID:       store.ID,
			LayoutStyle:   model.LayoutGrid,
			DefaultLocale: model.LocaleEN,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}
		stat := model.StoreStat{StoreID: store.ID}
		if err := tx.Create(&stat).Error; err != nil {
			return err
		}
		membership := model.StoreMembership{
			StoreID: store.ID,
			UserID:  userID,
			Role:    role.Owner,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return activity.Log(tx, activity.Entry{
			StoreID:     store.ID,
			ActorUserID: &userID,
			Type:        model.ActivityStoreCreated,
			EntityType:  "store",
			EntityID:    store.ID,
		})
	})
	if err != nil {
		// The slug check above races with concurrent creations; the unique
		// index is the arbiter.
		if duplicateKey(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already taken"})
		}
		log.Error("Failed to create store", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store creation failed"})
	}

	log.Info("Store created",
		zap.String("slug", store.Slug),
		zap.Uint("store_id", store.ID),
		zap.Uint("owner_id", userID))
	return c.JSON(http.StatusCreated, echo.Map{"store": store})
}

// ListMyStores handles GET /api/stores: every store the caller belongs to,
// with the caller's role in each.
func (h *StoreHandler) ListMyStores(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := h.sessions.UserID(c)
	if !ok {
		return gate.Respond(c, gate.ErrUnauthenticated)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var memberships []model.StoreMembership
	if result := h.db.Preload("Store").Where("user_id = ?", userID).Find(&memberships); result.Error != nil {
		log.Error("Failed to list memberships", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stores"})
	}

	type storeEntry struct {
		ID        uint      `json:"id"`
		Slug      string    `json:"slug"`
		Name      string    `json:"name"`
		Role      role.Role `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}
	stores := make([]storeEntry, 0, len(memberships))
	for _, m := range memberships {
		stores = append(stores, storeEntry{
			ID:        m.Store.ID,
			Slug:      m.Store.Slug,
			Name:      m.Store.Name,
			Role:      m.Role,
			CreatedAt: m.Store.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"stores": stores})
}

// GetStore handles GET /api/stores/:slug, the dashboard summary for members.
func (h *StoreHandler) GetStore(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var productCount, messageCount, mediaCount int64
	h.db.Model(&model.Product{}).Where("store_id = ?", ctx.StoreID).Count(&productCount)
	h.db.Model(&model.Message{}).Where("store_id = ?", ctx.StoreID).Count(&messageCount)
	h.db.Model(&model.MediaFile{}).Where("store_id = ?", ctx.StoreID).Count(&mediaCount)

	var stat model.StoreStat
	if result := h.db.Where("store_id = ?", ctx.StoreID).First(&stat); result.Error != nil {
		log.Warn("Store stat row missing", zap.Uint("store_id", ctx.StoreID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"store": echo.Map{
			"id":   ctx.StoreID,
			"slug": ctx.StoreSlug,
			"name": ctx.StoreName,
			"role": ctx.Role,
		},
		"counts": echo.Map{
			"products": productCount,
			"messages": messageCount,
			"media":    mediaCount,
		},
		"stats": echo.Map{
			"visits":   stat.VisitCount,
			"messages": stat.MessageCount,
		},
	})
}

// UpdateSettings handles PUT /api/stores/:slug/settings. Owner only.
func (h *StoreHandler) UpdateSettings(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Owner)
	if err != nil {
		return gate.Respond(c, err)
	}

	var req struct {
		PrimaryColor  *string `json:"primary_color" validate:"omitempty,max=32"`
		FontFamily    *string `json:"font_family" validate:"omitempty,max=80"`
		LayoutStyle   string  `json:"layout_style" validate:"required,oneof=GRID LIST"`
		EnableArabic  bool    `json:"enable_arabic"`
		DefaultLocale string  `json:"default_locale" validate:"required,oneof=EN AR"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid settings"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var settings model.StoreSettings
	result := h.db.Where("store_id = ?", ctx.StoreID).First(&settings)
	if result.Error != nil {
		settings = model.StoreSettings{StoreID: ctx.StoreID}
	}
	settings.PrimaryColor = req.PrimaryColor
	settings.FontFamily = req.FontFamily
	settings.LayoutStyle = req.LayoutStyle
	settings.EnableArabic = req.EnableArabic
	settings.DefaultLocale = req.DefaultLocale

	if err := h.db.Save(&settings).Error; err != nil {
		log.Error("Failed to update store settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings update failed"})
	}

	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        model.ActivityStoreSettingsUpdated,
		EntityType:  "store_settings",
		EntityID:    settings.ID,
	}); err != nil {
		log.Warn("Failed to record settings activity", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"settings": settings})
}
