package models

import (
	"time"

	"gorm.io/gorm"
)

// StoreProfile backs the store/hotel profile pages. Read-mostly projection.
type StoreProfile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SellerID  string         `json:"seller_id" gorm:"unique;not null"`
	Name      string         `json:"name" gorm:"not null"`
	Kind      ItemKind       `json:"kind" gorm:"default:'product'"` // product store or dish hotel
	Address   string         `json:"address"`
	Rating    float64        `json:"rating"`
	IsOpen    bool           `json:"is_open" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
