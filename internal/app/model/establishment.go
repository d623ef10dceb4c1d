package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Chain groups establishments that belong to the same brand (e.g. a
// restaurant franchise). Reviews always attach to a concrete establishment.
type Chain struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null;index" json:"name"`
	LogoURL   string         `json:"logo_url"`
	Website   string         `json:"website"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Establishments []Establishment `gorm:"foreignKey:ChainID" json:"establishments,omitempty"`
}

func (Chain) TableName() string {
	return "chains"
}

type Establishment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null;index" json:"name"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"index" json:"city"`
	Latitude  *float64       `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude *float64       `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	Phone     string         `gorm:"type:varchar(30)" json:"phone"`
	Website   string         `json:"website"`
	ImageURL  string         `json:"image_url"`

	// Google Places identifier; imported establishments are deduplicated on it
	PlaceID *string `gorm:"uniqueIndex" json:"place_id,omitempty"`

	ChainID *uint  `gorm:"index" json:"chain_id,omitempty"`
	Chain   *Chain `gorm:"foreignKey:ChainID" json:"chain,omitempty"`

	CuisineTypes pq.StringArray `gorm:"type:text[]" json:"cuisine_types,omitempty"`

	// Denormalized review stats, recomputed by the nightly scheduler
	ReviewCount   int     `gorm:"default:0" json:"review_count"`
	AverageRating float64 `gorm:"default:0" json:"average_rating"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Establishment) TableName() string {
	return "establishments"
}
