package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/gate"
	"storefront-service/internal/model"
	"storefront-service/internal/role"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// ActivityHandler exposes the per-store audit trail.
type ActivityHandler struct {
	db   *gorm.DB
	gate *gate.Gate
}

func NewActivityHandler(db *gorm.DB, g *gate.Gate) *ActivityHandler {
	return &ActivityHandler{db: db, gate: g}
}

// List handles GET /api/stores/:slug/activity, newest first.
func (h *ActivityHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var entries []model.ActivityLog
	if result := h.db.Where("store_id = ?", ctx.StoreID).
		Order("created_at DESC").Limit(100).Find(&entries); result.Error != nil {
		log.Error("Failed to list activity", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve activity"})
	}

	return c.JSON(http.StatusOK, echo.Map{"activity": entries})
}
