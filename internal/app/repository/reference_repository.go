package repository

import (
	"github.com/safedine/safedine-backend/internal/app/model"
	"gorm.io/gorm"
)

// ReferenceRepository reads the allergen and question reference tables.
// The review engine only ever reads these; writes happen through migrations
// and admin tooling.
type ReferenceRepository interface {
	ActiveAllergens() ([]model.Allergen, error)
	ActiveQuestions() ([]model.Question, error)
	FindAllergenByCode(code string) (*model.Allergen, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ActiveAllergens() ([]model.Allergen, error) {
	var allergens []model.Allergen
	err := r.db.Where("active = ?", true).Order("code ASC").Find(&allergens).Error
	if err != nil {
		return nil, err
	}
	return allergens, nil
}

func (r *referenceRepository) ActiveQuestions() ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("active = ?", true).Order("sort_order ASC, code ASC").Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *referenceRepository) FindAllergenByCode(code string) (*model.Allergen, error) {
	var allergen model.Allergen
	err := r.db.Where("code = ? AND active = ?", code, true).First(&allergen).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &allergen, nil
}
