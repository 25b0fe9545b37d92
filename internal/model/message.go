package model

import "time"

// Message is a customer inquiry delivered to a store's dashboard inbox.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StoreID    uint      `json:"store_id" gorm:"index;not null"`
	CustomerID uint      `json:"customer_id" gorm:"index;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Customer Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}
