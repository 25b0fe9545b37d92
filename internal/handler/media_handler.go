package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/activity"
	"storefront-service/internal/gate"
	"storefront-service/internal/model"
	"storefront-service/internal/role"
	"storefront-service/internal/storage"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// MediaHandler owns image uploads and public media serving.
type MediaHandler struct {
	db      *gorm.DB
	gate    *gate.Gate
	storage *storage.Store
}

func NewMediaHandler(db *gorm.DB, g *gate.Gate, s *storage.Store) *MediaHandler {
	return &MediaHandler{db: db, gate: g, storage: s}
}

// Upload handles POST /api/stores/:slug/media (multipart). Editor rank;
// CSRF is enforced by the surrounding middleware before this runs.
func (h *MediaHandler) Upload(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Editor)
	if err != nil {
		prometheus.RecordMediaUpload("rejected")
		return gate.Respond(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		prometheus.RecordMediaUpload("missing_file")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing file"})
	}
	folder := c.FormValue("folder")

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error("Failed to read upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}

	saved, err := h.storage.SaveImage(ctx.StoreID, folder, data)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge),
			errors.Is(err, storage.ErrInvalidImage),
			errors.Is(err, storage.ErrImageTooLarge):
			prometheus.RecordMediaUpload("invalid")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			log.Error("Failed to store upload", zap.Error(err))
			prometheus.RecordMediaUpload("error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
		}
	}

	media := model.MediaFile{
		StoreID:   ctx.StoreID,
		Key:       saved.Key,
		Folder:    saved.Folder,
		Filename:  saved.Filename,
		MimeType:  saved.MimeType,
		SizeBytes: saved.SizeBytes,
		Width:     &saved.Width,
		Height:    &saved.Height,
		SHA256:    saved.SHA256,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&media); result.Error != nil {
		log.Error("Failed to record media file", zap.Error(result.Error))
		prometheus.RecordMediaUpload("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	if err := activity.Log(h.db, activity.Entry{
		StoreID:     ctx.StoreID,
		ActorUserID: &ctx.UserID,
		Type:        model.ActivityMediaUploaded,
		EntityType:  "media",
		EntityID:    media.ID,
	}); err != nil {
		log.Warn("Failed to record media activity", zap.Error(err))
	}

	prometheus.RecordMediaUpload("ok")
	log.Info("Media uploaded",
		zap.Uint("store_id", ctx.StoreID),
		zap.String("key", media.Key),
		zap.Int64("size_bytes", media.SizeBytes))
	return c.JSON(http.StatusCreated, echo.Map{
		"media_id": media.ID,
		"key":      media.Key,
		"url":      "/store/" + ctx.StoreSlug + "/media/" + media.Key,
	})
}

// List handles GET /api/stores/:slug/media.
func (h *MediaHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	ctx, err := h.gate.RequireStoreAccess(c, c.Param("slug"), role.Viewer)
	if err != nil {
		return gate.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var files []model.MediaFile
	if result := h.db.Where("store_id = ?", ctx.StoreID).
		Order("created_at DESC").Find(&files); result.Error != nil {
		log.Error("Failed to list media", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve media"})
	}

	return c.JSON(http.StatusOK, echo.Map{"media": files})
}

// Serve handles GET /store/:slug/media/*. Public delivery by key: the key is
// validated against the MediaFile table so only recorded uploads are
// reachable, and re-sanitized before touching the filesystem.
func (h *MediaHandler) Serve(c echo.Context) error {
	var store model.Store
	if result := h.db.Where("slug = ?", c.Param("slug")).First(&store); result.Error != nil {
		return storeLookupError(c, result.Error)
	}

	key := storage.SafeSubpath(c.Param("*"))
	var media model.MediaFile
	if result := h.db.Where("store_id = ? AND key = ?", store.ID, key).First(&media); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		logger.FromContext(c).Error("Media lookup failed", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load media"})
	}

	return c.File(h.storage.ResolvePath(store.ID, media.Key))
}
