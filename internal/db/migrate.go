package db

import (
	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Chain{},
		&model.Establishment{},
		&model.Allergen{},
		&model.Question{},
		&model.Review{},
		&model.AllergenScore{},
		&model.Answer{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedReferenceData(DB); err != nil {
		logger.Error("Failed to seed reference data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the allergen catalog and question bank when missing
func Seed() error {
	return seedReferenceData(DB)
}

// DefaultAllergens is the canonical allergen catalog. Codes are stored in
// canonical form; client-facing aliases are translated at the service layer.
func DefaultAllergens() []model.Allergen {
	return []model.Allergen{
		{Code: "gluten", Name: "Gluten", Icon: "wheat", Active: true},
		{Code: "crustaceans", Name: "Crustaceans", Icon: "shrimp", Active: true},
		{Code: "eggs", Name: "Eggs", Icon: "egg", Active: true},
		{Code: "fish", Name: "Fish", Icon: "fish", Active: true},
		{Code: "peanuts", Name: "Peanuts", Icon: "peanut", Active: true},
		{Code: "soy", Name: "Soy", Icon: "soybean", Active: true},
		{Code: "milk", Name: "Milk", Icon: "milk", Active: true},
		{Code: "nuts", Name: "Tree Nuts", Icon: "nut", Active: true},
		{Code: "celery", Name: "Celery", Icon: "celery", Active: true},
		{Code: "mustard", Name: "Mustard", Icon: "mustard", Active: true},
		{Code: "sesame", Name: "Sesame", Icon: "sesame", Active: true},
		{Code: "sulphites", Name: "Sulphites", Icon: "wine", Active: true},
		{Code: "lupin", Name: "Lupin", Icon: "lupin", Active: true},
		{Code: "molluscs", Name: "Molluscs", Icon: "mussel", Active: true},
	}
}

// DefaultQuestions is the canonical yes/no question bank.
func DefaultQuestions() []model.Question {
	return []model.Question{
		{Code: "allergen_menu", Text: "Does the establishment have a dedicated allergen menu?", Version: 1, Active: true, SortOrder: 1},
		{Code: "dedicated_fryer", Text: "Is there a dedicated fryer for allergen-free food?", Version: 1, Active: true, SortOrder: 2},
		{Code: "staff_trained", Text: "Are staff trained on allergen handling?", Version: 1, Active: true, SortOrder: 3},
		{Code: "ingredient_list", Text: "Can the kitchen provide a full ingredient list on request?", Version: 1, Active: true, SortOrder: 4},
		{Code: "cross_contamination", Text: "Are precautions taken against cross-contamination?", Version: 1, Active: true, SortOrder: 5},
	}
}

func seedReferenceData(db *gorm.DB) error {
	logger.Info("Seeding reference data...")

	if err := seedAllergens(db); err != nil {
		logger.Error("Failed to seed allergens", err)
		return err
	}
	if err := seedQuestions(db); err != nil {
		logger.Error("Failed to seed questions", err)
		return err
	}

	logger.Info("Reference data seeded successfully")
	return nil
}

func seedAllergens(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Allergen{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Allergens already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	allergens := DefaultAllergens()
	for _, allergen := range allergens {
		if err := db.Create(&allergen).Error; err != nil {
			logger.Error("Failed to create allergen", err, map[string]interface{}{
				"code": allergen.Code,
			})
			return err
		}
	}

	logger.Info("Allergens seeded successfully", map[string]interface{}{
		"total": len(allergens),
	})
	return nil
}

func seedQuestions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Questions already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	questions := DefaultQuestions()
	for _, question := range questions {
		if err := db.Create(&question).Error; err != nil {
			logger.Error("Failed to create question", err, map[string]interface{}{
				"code": question.Code,
			})
			return err
		}
	}

	logger.Info("Questions seeded successfully", map[string]interface{}{
		"total": len(questions),
	})
	return nil
}
