package models

import (
	"time"

	"gorm.io/gorm"
)

type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindDish    ItemKind = "dish"
)

type CartLine struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	SessionKey string         `json:"-" gorm:"index;not null"`
	ProductID  string         `json:"product_id" gorm:"not null"`
	Name       string         `json:"name" gorm:"not null"`
	UnitPrice  float64        `json:"unit_price" gorm:"not null"`
	ImageRef   string         `json:"image_ref"`
	Quantity   int            `json:"quantity" gorm:"not null"` // always >= 1, zero quantity removes the line
	SellerID   string         `json:"seller_id"`
	SellerName string         `json:"seller_name"`
	Kind       ItemKind       `json:"kind" gorm:"default:'product'"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Seller is the deduplicated (id, name) pair derived from cart lines.
type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
