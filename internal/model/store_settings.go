package model

import "time"

// Layout styles and locales exposed by the storefront settings form.
const (
	LayoutGrid = "GRID"
	LayoutList = "LIST"

	LocaleEN = "EN"
	LocaleAR = "AR"
)

// StoreSettings holds per-store presentation options, one row per store.
type StoreSettings struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	StoreID       uint      `json:"store_id" gorm:"uniqueIndex;not null"`
	PrimaryColor  *string   `json:"primary_color,omitempty" gorm:"type:varchar(32)"`
	FontFamily    *string   `json:"font_family,omitempty" gorm:"type:varchar(80)"`
	LayoutStyle   string    `json:"layout_style" gorm:"type:varchar(16);default:'GRID'"`
	EnableArabic  bool      `json:"enable_arabic" gorm:"default:false"`
	DefaultLocale string    `json:"default_locale" gorm:"type:varchar(8);default:'EN'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
