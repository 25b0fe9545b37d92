package model

import "time"

// StoreStat accumulates per-store counters bumped by the public storefront.
type StoreStat struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StoreID      uint      `json:"store_id" gorm:"uniqueIndex;not null"`
	VisitCount   int64     `json:"visit_count" gorm:"default:0"`
	MessageCount int64     `json:"message_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
