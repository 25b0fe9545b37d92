package model

import (
	"time"

	"gorm.io/gorm"
)

// Store is a tenant: an isolated storefront namespace addressed by its slug.
// All catalog and membership data hangs off a store by foreign key.
type Store struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Slug      string         `json:"slug" gorm:"type:varchar(80);uniqueIndex"`
	Name      string         `json:"name" gorm:"type:varchar(80);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
