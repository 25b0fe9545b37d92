package model

import "time"

// MediaFile records an uploaded image stored on disk under the store's
// directory. Key is the path relative to that directory.
type MediaFile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"index;not null"`
	Key       string    `json:"key" gorm:"type:varchar(255);not null"`
	Folder    *string   `json:"folder,omitempty" gorm:"type:varchar(160)"`
	Filename  string    `json:"filename" gorm:"type:varchar(160);not null"`
	MimeType  string    `json:"mime_type" gorm:"type:varchar(40)"`
	SizeBytes int64     `json:"size_bytes"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	SHA256    string    `json:"sha256" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
}
