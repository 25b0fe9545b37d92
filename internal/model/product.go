package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog entry scoped to a single store. Prices are integer
// cents; a discounted price is only meaningful while DiscountEnabled is set.
type Product struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	StoreID         uint           `json:"store_id" gorm:"index;not null"`
	Name            string         `json:"name" gorm:"type:varchar(120);not null"`
	Description     *string        `json:"description,omitempty" gorm:"type:text"`
	Specs           *string        `json:"specs,omitempty" gorm:"type:text"`
	SKU             *string        `json:"sku,omitempty" gorm:"type:varchar(80)"`
	Currency        string         `json:"currency" gorm:"type:varchar(8);default:'USD'"`
	OriginalPrice   int64          `json:"original_price" gorm:"not null"`
	DiscountedPrice *int64         `json:"discounted_price,omitempty"`
	DiscountEnabled bool           `json:"discount_enabled" gorm:"default:false"`
	StockQty        int            `json:"stock_qty" gorm:"default:0"`
	IsActive        bool           `json:"is_active" gorm:"default:false"`
	ViewCount       int64          `json:"view_count" gorm:"default:0"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}
