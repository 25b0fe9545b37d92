package model

import (
	"time"

	"storefront-service/internal/role"
)

// StoreMembership binds one user to one store with a single role. The
// composite unique index keeps it a mapping: at most one row per
// (store, user) pair.
type StoreMembership struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"uniqueIndex:idx_store_user;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_store_user;not null"`
	Role      role.Role `json:"role" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Store Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}
