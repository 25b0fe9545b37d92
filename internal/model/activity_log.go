package model

import "time"

// Activity types recorded in the per-store audit trail.
const (
	ActivityStoreCreated             = "STORE_CREATED"
	ActivityStoreSettingsUpdated     = "STORE_SETTINGS_UPDATED"
	ActivityUserAdded                = "USER_ADDED"
	ActivityProductCreated           = "PRODUCT_CREATED"
	ActivityProductUpdated           = "PRODUCT_UPDATED"
	ActivityProductPriceChanged      = "PRODUCT_PRICE_CHANGED"
	ActivityProductVisibilityChanged = "PRODUCT_VISIBILITY_CHANGED"
	ActivityProductDeleted           = "PRODUCT_DELETED"
	ActivityMediaUploaded            = "MEDIA_UPLOADED"
	ActivityMessageReceived          = "MESSAGE_RECEIVED"
)

// ActivityLog is an append-only record of notable store events. ActorUserID
// is nil for events produced by anonymous storefront visitors.
type ActivityLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StoreID     uint      `json:"store_id" gorm:"index;not null"`
	ActorUserID *uint     `json:"actor_user_id,omitempty" gorm:"index"`
	Type        string    `json:"type" gorm:"type:varchar(40);not null"`
	EntityType  string    `json:"entity_type,omitempty" gorm:"type:varchar(40)"`
	EntityID    uint      `json:"entity_id,omitempty"`
	// Meta is optional JSON detail. A pointer so entries without metadata
	// insert NULL; an empty string is not valid jsonb on postgres.
	Meta        *string   `json:"meta,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"created_at"`
}
