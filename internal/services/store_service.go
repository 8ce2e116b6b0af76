package services

import (
	"athani_mart/internal/models"
	"athani_mart/internal/repository"
)

type StoreService interface {
	CreateStore(store *models.StoreProfile) error
	GetStoreBySellerID(sellerID string) (*models.StoreProfile, error)
	GetAllStores() ([]models.StoreProfile, error)
	GetStoresByKind(kind models.ItemKind) ([]models.StoreProfile, error)
	SetOpen(sellerID string, open bool) (*models.StoreProfile, error)
}

type storeService struct {
	storeRepo repository.StoreRepository
}

func NewStoreService(storeRepo repository.StoreRepository) StoreService {
	return &storeService{storeRepo: storeRepo}
}

func (s *storeService) CreateStore(store *models.StoreProfile) error {
	return s.storeRepo.Create(store)
}

func (s *storeService) GetStoreBySellerID(sellerID string) (*models.StoreProfile, error) {
	return s.storeRepo.GetBySellerID(sellerID)
}

func (s *storeService) GetAllStores() ([]models.StoreProfile, error) {
	return s.storeRepo.GetAll()
}

func (s *storeService) GetStoresByKind(kind models.ItemKind) ([]models.StoreProfile, error) {
	return s.storeRepo.GetByKind(kind)
}

func (s *storeService) SetOpen(sellerID string, open bool) (*models.StoreProfile, error) {
	store, err := s.storeRepo.GetBySellerID(sellerID)
	if err != nil {
		return nil, err
	}

	store.IsOpen = open
	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}
	return store, nil
}
