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
	"storefront-service/internal/gate"
	"storefront-service/internal/model"
	"storefront-service/internal/role"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// MemberHandler manages store memberships. Mutations require OWNER rank,
// enforced through the same gate as every other tenant-scoped write.
type MemberHandler struct {
	db   *gorm.DB
	gate *gate.Gate
}

func NewMemberHandler(db *gorm.DB, g *gate.Gate) *MemberHandler {
	return &MemberHandler{db: db, gate: g}
}

// UpsertMember handles PUT /api/stores/:slug/members: grant a user a role by
// email, or change an existing member's role. One membership row per
// (store, user) pair.
func (h *MemberHandler) UpsertMember(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Owner)
	if err != nil {
		return gate.Respond(c, err)
	}

	var req struct {
		Email string    `json:"email" validate:"required,email"`
		Role  role.Role `json:"role" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil || !role.Valid(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and a valid role are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	result := h.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no user with that email"})
		}
		log.Error("User lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member update failed"})
	}

	var membership model.StoreMembership
	result = h.db.Where("store_id = ? AND user_id = ?", ctx.StoreID, user.ID).First(&membership)
	if result.Error == nil {
		membership.Role = req.Role
		if err := h.db.Save(&membership).Error; err != nil {
			log.Error("Failed to update member role", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member update failed"})
		}
	} else {
		membership = model.StoreMembership{
			StoreID: ctx.StoreID,
			UserID:  user.ID,
			Role:    req.Role,
		}
		if err := h.db.Create(&membership).Error; err != nil {
			log.Error("Failed to create membership", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member update failed"})
		}
	}

	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        model.ActivityUserAdded,
		EntityType:  "user",
		EntityID:    user.ID,
		Meta:        `{"role":"` + string(req.Role) + `"}`,
	}); err != nil {
		log.Warn("Failed to record member activity", zap.Error(err))
	}

	log.Info("Membership upserted",
		zap.Uint("store_id", ctx.StoreID),
		zap.Uint("user_id", user.ID),
		zap.String("role", string(req.Role)))
	return c.JSON(http.StatusOK, echo.Map{
		"member": echo.Map{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    membership.Role,
		},
	})
}

// ListMembers handles GET /api/stores/:slug/members.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var memberships []model.StoreMembership
	if result := h.db.Preload("User").Where("store_id = ?", ctx.StoreID).Find(&memberships); result.Error != nil {
		log.Error("Failed to list members", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve members"})
	}

	type memberEntry struct {
		UserID uint      `json:"user_id"`
		Email  string    `json:"email"`
		Name   string    `json:"name"`
		Role   role.Role `json:"role"`
	}
	members := make([]memberEntry, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, memberEntry{
			UserID: m.UserID,
			Email:  m.User.Email,
			Name:   m.User.Name,
			Role:   m.Role,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}
