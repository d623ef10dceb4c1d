package repository

import (
	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/pkg/logger"
	"gorm.io/gorm"
)

type EstablishmentFilter struct {
	Search  string
	City    string
	ChainID *uint
}

type EstablishmentRepository interface {
	Create(establishment *model.Establishment) error
	Update(establishment *model.Establishment) error
	Delete(id uint) error
	FindAll(filter EstablishmentFilter, offset, limit int) ([]model.Establishment, int64, error)
	FindByID(id uint) (*model.Establishment, error)
	FindByPlaceID(placeID string) (*model.Establishment, error)
	FindFirstByChainID(chainID uint) (*model.Establishment, error)
	FindChainByID(chainID uint) (*model.Chain, error)
	BulkCreate(establishments []model.Establishment, batchSize int) error
	RecomputeReviewStats() (int64, error)
}

type establishmentRepository struct {
	db *gorm.DB
}

func NewEstablishmentRepository(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepository{db: db}
}

func (r *establishmentRepository) Create(establishment *model.Establishment) error {
	if err := r.db.Create(establishment).Error; err != nil {
		logger.Error("Failed to create establishment in database", err, map[string]interface{}{
			"name": establishment.Name,
		})
		return err
	}
	return nil
}

func (r *establishmentRepository) Update(establishment *model.Establishment) error {
	return r.db.Save(establishment).Error
}

func (r *establishmentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Establishment{}, id).Error
}

func (r *establishmentRepository) FindAll(filter EstablishmentFilter, offset, limit int) ([]model.Establishment, int64, error) {
	var establishments []model.Establishment
	var total int64

	query := r.db.Model(&model.Establishment{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.ChainID != nil {
		query = query.Where("chain_id = ?", *filter.ChainID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Chain").
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&establishments).Error
	if err != nil {
		return nil, 0, err
	}

	return establishments, total, nil
}

func (r *establishmentRepository) FindByID(id uint) (*model.Establishment, error) {
	var establishment model.Establishment
	if err := r.db.Preload("Chain").First(&establishment, id).Error; err != nil {
		return nil, err
	}
	return &establishment, nil
}

func (r *establishmentRepository) FindByPlaceID(placeID string) (*model.Establishment, error) {
	var establishment model.Establishment
	err := r.db.Preload("Chain").Where("place_id = ?", placeID).First(&establishment).Error
	if err != nil {
		return nil, err
	}
	return &establishment, nil
}

// FindFirstByChainID returns the chain's oldest establishment (lowest pk).
// Used to resolve "chain-<id>" pseudo-ids to a concrete establishment.
func (r *establishmentRepository) FindFirstByChainID(chainID uint) (*model.Establishment, error) {
	var establishment model.Establishment
	err := r.db.Preload("Chain").
		Where("chain_id = ?", chainID).
		Order("id ASC").
		First(&establishment).Error
	if err != nil {
		return nil, err
	}
	return &establishment, nil
}

func (r *establishmentRepository) FindChainByID(chainID uint) (*model.Chain, error) {
	var chain model.Chain
	if err := r.db.First(&chain, chainID).Error; err != nil {
		return nil, err
	}
	return &chain, nil
}

func (r *establishmentRepository) BulkCreate(establishments []model.Establishment, batchSize int) error {
	return r.db.CreateInBatches(establishments, batchSize).Error
}

// RecomputeReviewStats refreshes the denormalized review_count and
// average_rating columns from the published reviews. Returns the number of
// establishments touched.
func (r *establishmentRepository) RecomputeReviewStats() (int64, error) {
	type statRow struct {
		EstablishmentID uint
		ReviewCount     int64
		AverageRating   float64
	}

	var rows []statRow
	err := r.db.Model(&model.Review{}).
		Select("establishment_id, COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("status = ?", model.ReviewStatusPublished).
		Group("establishment_id").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	// Reset first so establishments that lost their last review go back to zero
	if err := r.db.Model(&model.Establishment{}).
		Where("review_count > 0 OR average_rating > 0").
		Updates(map[string]interface{}{"review_count": 0, "average_rating": 0}).Error; err != nil {
		return 0, err
	}

	var updated int64
	for _, row := range rows {
		result := r.db.Model(&model.Establishment{}).
			Where("id = ?", row.EstablishmentID).
			Updates(map[string]interface{}{
				"review_count":   row.ReviewCount,
				"average_rating": row.AverageRating,
			})
		if result.Error != nil {
			return updated, result.Error
		}
		updated += result.RowsAffected
	}

	return updated, nil
}
