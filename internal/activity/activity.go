package activity

import (
	"gorm.io/gorm"

	"storefront-service/internal/model"
)

// Entry describes one event to append to a store's activity trail. Meta, when
// set, must be a JSON document.
type Entry struct {
	StoreID     uint
	ActorUserID *uint
	Type        string
	EntityType  string
	EntityID    uint
	Meta        string
}

func rowFor(e Entry) model.ActivityLog {
	row := model.ActivityLog{
		StoreID:     e.StoreID,
		ActorUserID: e.ActorUserID,
		Type:        e.Type,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
	}
	// Meta lands in a jsonb column; absent metadata must insert NULL rather
	// than an empty string, which postgres rejects as invalid json.
	if e.Meta != "" {
		row.Meta = &e.Meta
	}
	return row
}

// Log appends an entry. Activity is best-effort bookkeeping: callers decide
// whether a failure should abort the surrounding operation.
func Log(db *gorm.DB, e Entry) error {
	row := rowFor(e)
	return db.Create(&row).Error
}
