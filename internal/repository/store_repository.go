package repository

import (
	"athani_mart/internal/models"

	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(store *models.StoreProfile) error
	GetBySellerID(sellerID string) (*models.StoreProfile, error)
	Update(store *models.StoreProfile) error
	GetAll() ([]models.StoreProfile, error)
	GetByKind(kind models.ItemKind) ([]models.StoreProfile, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *models.StoreProfile) error {
	return r.db.Create(store).Error
}

func (r *storeRepository) GetBySellerID(sellerID string) (*models.StoreProfile, error) {
	var store models.StoreProfile
	err := r.db.Where("seller_id = ?", sellerID).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Update(store *models.StoreProfile) error {
	return r.db.Save(store).Error
}

func (r *storeRepository) GetAll() ([]models.StoreProfile, error) {
	var stores []models.StoreProfile
	err := r.db.Find(&stores).Error
	return stores, err
}

func (r *storeRepository) GetByKind(kind models.ItemKind) ([]models.StoreProfile, error) {
	var stores []models.StoreProfile
	err := r.db.Where("kind = ?", kind).Find(&stores).Error
	return stores, err
}
