package models

import (
	"time"

	"gorm.io/gorm"
)

type Agent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	PhoneNumber string         `json:"phone_number"`
	IsOnline    bool           `json:"is_online" gorm:"default:false"`
	IsVerified  bool           `json:"is_verified" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
