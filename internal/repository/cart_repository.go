package repository

import (
	"athani_mart/internal/models"

	"gorm.io/gorm"
)

// CartRepository is the Postgres binding of the cart persistence mirror,
// for deployments that want cart durability without Redis.
type CartRepository interface {
	SaveLines(sessionKey string, lines []models.CartLine) error
	LoadLines(sessionKey string) ([]models.CartLine, error)
	ClearLines(sessionKey string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) SaveLines(sessionKey string, lines []models.CartLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("session_key = ?", sessionKey).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].SessionKey = sessionKey
		}
		return tx.Create(&lines).Error
	})
}

func (r *cartRepository) LoadLines(sessionKey string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.Where("session_key = ?", sessionKey).Order("created_at asc").Find(&lines).Error
	return lines, err
}

func (r *cartRepository) ClearLines(sessionKey string) error {
	return r.db.Unscoped().Where("session_key = ?", sessionKey).Delete(&models.CartLine{}).Error
}
