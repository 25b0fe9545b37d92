package model

import "time"

// Customer is a storefront visitor who has sent at least one inquiry,
// deduplicated per store by lower-cased email.
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"uniqueIndex:idx_store_customer_email;not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_store_customer_email;not null"`
	Name      string    `json:"name" gorm:"type:varchar(80)"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(40)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
