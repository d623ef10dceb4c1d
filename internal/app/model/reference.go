package model

import "time"

// Allergen is reference data: the canonical allergen vocabulary. Only
// canonical codes are ever persisted on scores; client-facing aliases are
// translated at the service boundary.
type Allergen struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"` // canonical code, e.g. "nuts"
	Name      string    `gorm:"not null" json:"name"`
	Icon      string    `json:"icon"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Allergen) TableName() string {
	return "allergens"
}

// Question is reference data: the versioned bank of yes/no review questions.
// Answers submitted for codes that are not active here are dropped, never
// stored.
type Question struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Version   int       `gorm:"default:1;not null" json:"version"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}
