package service

import (
	"errors"

	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/pkg/logger"
	"gorm.io/gorm"
)

type EstablishmentService interface {
	ListEstablishments(filter repository.EstablishmentFilter, page, pageSize int) ([]model.Establishment, int64, error)
	GetEstablishment(id uint) (*model.Establishment, error)
	GetChain(id uint) (*model.Chain, error)
	CreateEstablishment(establishment *model.Establishment) (*model.Establishment, error)
	UpdateEstablishment(id uint, updates map[string]interface{}) (*model.Establishment, error)
	DeleteEstablishment(id uint) error
	RecomputeReviewStats() (int64, error)
}

type establishmentService struct {
	estRepo repository.EstablishmentRepository
	db      *gorm.DB
}

func NewEstablishmentService(estRepo repository.EstablishmentRepository, db *gorm.DB) EstablishmentService {
	return &establishmentService{estRepo: estRepo, db: db}
}

func (s *establishmentService) ListEstablishments(filter repository.EstablishmentFilter, page, pageSize int) ([]model.Establishment, int64, error) {
	offset := (page - 1) * pageSize
	return s.estRepo.FindAll(filter, offset, pageSize)
}

func (s *establishmentService) GetEstablishment(id uint) (*model.Establishment, error) {
	establishment, err := s.estRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		return nil, err
	}
	return establishment, nil
}

func (s *establishmentService) GetChain(id uint) (*model.Chain, error) {
	chain, err := s.estRepo.FindChainByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChainNotFound
		}
		return nil, err
	}
	return chain, nil
}

func (s *establishmentService) CreateEstablishment(establishment *model.Establishment) (*model.Establishment, error) {
	if establishment.Name == "" {
		return nil, ErrValidation
	}

	if err := s.estRepo.Create(establishment); err != nil {
		return nil, err
	}

	logger.Info("Establishment created", map[string]interface{}{
		"establishment_id": establishment.ID,
		"name":             establishment.Name,
	})

	return establishment, nil
}

func (s *establishmentService) UpdateEstablishment(id uint, updates map[string]interface{}) (*model.Establishment, error) {
	establishment, err := s.GetEstablishment(id)
	if err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return establishment, nil
	}

	if err := s.db.Model(establishment).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetEstablishment(id)
}

func (s *establishmentService) DeleteEstablishment(id uint) error {
	if _, err := s.GetEstablishment(id); err != nil {
		return err
	}
	return s.estRepo.Delete(id)
}

// RecomputeReviewStats refreshes the denormalized stats columns; called by
// the nightly scheduler and exposed for admin-triggered runs.
func (s *establishmentService) RecomputeReviewStats() (int64, error) {
	updated, err := s.estRepo.RecomputeReviewStats()
	if err != nil {
		logger.Error("Failed to recompute establishment review stats", err)
		return 0, err
	}

	logger.Info("Recomputed establishment review stats", map[string]interface{}{
		"establishments_updated": updated,
	})
	return updated, nil
}
