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

// MessageHandler exposes the dashboard inbox.
type MessageHandler struct {
	db   *gorm.DB
	gate *gate.Gate
}

func NewMessageHandler(db *gorm.DB, g *gate.Gate) *MessageHandler {
	return &MessageHandler{db: db, gate: g}
}

// List handles GET /api/stores/:slug/messages, newest first.
func (h *MessageHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var messages []model.Message
	if result := h.db.Preload("Customer").Where("store_id = ?", ctx.StoreID).
		Order("created_at DESC").Limit(200).Find(&messages); result.Error != nil {
		log.Error("Failed to list messages", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve messages"})
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}
