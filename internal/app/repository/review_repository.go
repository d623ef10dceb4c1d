package repository

import (
	"github.com/safedine/safedine-backend/internal/app/model"
	"gorm.io/gorm"
)

// reviewPreloads loads everything the denormalized review view needs
func reviewPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Establishment").
		Preload("Establishment.Chain").
		Preload("AllergenScores").
		Preload("AllergenScores.Allergen").
		Preload("Answers")
}

type ReviewRepository interface {
	FindByID(id uint) (*model.Review, error)
	FindByUserAndEstablishment(userID, establishmentID uint) (*model.Review, error)
	FindByEstablishmentID(establishmentID uint, offset, limit int) ([]model.Review, int64, error)
	FindByChainID(chainID uint, offset, limit int) ([]model.Review, int64, error)
	FindByUserID(userID uint) ([]model.Review, error)

	// Write helpers run against the caller's transaction so a mutation
	// commits or rolls back as one unit.
	ReplaceAllergenScores(tx *gorm.DB, reviewID uint, scores []model.AllergenScore) error
	ReplaceAnswers(tx *gorm.DB, reviewID uint, answers []model.Answer) error
	DeleteWithChildren(tx *gorm.DB, reviewID uint) error

	AllergenAveragesForEstablishment(establishmentID uint) (map[string]float64, error)
	CountAndAverageRating(establishmentID uint) (int64, float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := reviewPreloads(r.db).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndEstablishment(userID, establishmentID uint) (*model.Review, error) {
	var review model.Review
	err := reviewPreloads(r.db).
		Where("user_id = ? AND establishment_id = ?", userID, establishmentID).
		First(&review).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByEstablishmentID(establishmentID uint, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("establishment_id = ?", establishmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := reviewPreloads(r.db).
		Where("establishment_id = ?", establishmentID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) FindByChainID(chainID uint, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	base := r.db.Model(&model.Review{}).
		Joins("JOIN establishments ON establishments.id = reviews.establishment_id").
		Where("establishments.chain_id = ?", chainID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := reviewPreloads(r.db).
		Joins("JOIN establishments ON establishments.id = reviews.establishment_id").
		Where("establishments.chain_id = ?", chainID).
		Order("reviews.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) FindByUserID(userID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := reviewPreloads(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ReplaceAllergenScores deletes every score row of the review and reinserts
// the given set. Callers submit the full desired state per category, so a
// row-wise upsert would only add complexity.
func (r *reviewRepository) ReplaceAllergenScores(tx *gorm.DB, reviewID uint, scores []model.AllergenScore) error {
	if err := tx.Where("review_id = ?", reviewID).Delete(&model.AllergenScore{}).Error; err != nil {
		return err
	}
	for i := range scores {
		scores[i].ReviewID = reviewID
	}
	if len(scores) == 0 {
		return nil
	}
	return tx.Create(&scores).Error
}

// ReplaceAnswers deletes every answer row of the review and reinserts the
// given set.
func (r *reviewRepository) ReplaceAnswers(tx *gorm.DB, reviewID uint, answers []model.Answer) error {
	if err := tx.Where("review_id = ?", reviewID).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].ReviewID = reviewID
	}
	if len(answers) == 0 {
		return nil
	}
	return tx.Create(&answers).Error
}

// DeleteWithChildren removes the review and its child rows in the caller's
// transaction. Children go first so the delete also works without ON DELETE
// CASCADE on the backing store.
func (r *reviewRepository) DeleteWithChildren(tx *gorm.DB, reviewID uint) error {
	if err := tx.Where("review_id = ?", reviewID).Delete(&model.AllergenScore{}).Error; err != nil {
		return err
	}
	if err := tx.Where("review_id = ?", reviewID).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Review{}, reviewID).Error
}

// CountAndAverageRating returns the published review count and mean overall
// rating for an establishment, computed at read time.
func (r *reviewRepository) CountAndAverageRating(establishmentID uint) (int64, float64, error) {
	var count int64
	query := r.db.Model(&model.Review{}).
		Where("establishment_id = ? AND status = ?", establishmentID, model.ReviewStatusPublished)
	if err := query.Count(&count).Error; err != nil {
		return 0, 0, err
	}

	var average float64
	if count > 0 {
		err := query.Select("COALESCE(AVG(rating), 0)").Scan(&average).Error
		if err != nil {
			return 0, 0, err
		}
	}

	return count, average, nil
}

// AllergenAveragesForEstablishment folds the stored scores into an average
// per canonical allergen code at read time; nothing is pre-aggregated.
func (r *reviewRepository) AllergenAveragesForEstablishment(establishmentID uint) (map[string]float64, error) {
	type avgRow struct {
		Code    string
		Average float64
	}

	var rows []avgRow
	err := r.db.Model(&model.AllergenScore{}).
		Select("allergens.code AS code, AVG(allergen_scores.score) AS average").
		Joins("JOIN allergens ON allergens.id = allergen_scores.allergen_id").
		Joins("JOIN reviews ON reviews.id = allergen_scores.review_id").
		Where("reviews.establishment_id = ? AND reviews.status = ?", establishmentID, model.ReviewStatusPublished).
		Group("allergens.code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	averages := make(map[string]float64, len(rows))
	for _, row := range rows {
		averages[row.Code] = row.Average
	}
	return averages, nil
}
