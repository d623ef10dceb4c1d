package model

import (
	"time"
)

type ReviewStatus string

const (
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusRejected  ReviewStatus = "rejected"
)

// Review is the header row of a review. The allergen scores and yes/no
// answers live in child tables and are replaced wholesale on update.
// Reviews are hard-deleted together with their children.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID          uint          `gorm:"not null;uniqueIndex:idx_reviews_user_establishment" json:"user_id"`
	User            User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EstablishmentID uint          `gorm:"not null;uniqueIndex:idx_reviews_user_establishment;index" json:"establishment_id"`
	Establishment   Establishment `gorm:"foreignKey:EstablishmentID" json:"establishment,omitempty"`

	Rating    *int         `gorm:"check:rating >= 1 AND rating <= 5" json:"rating,omitempty"` // overall rating, optional
	Comment   string       `gorm:"type:text" json:"comment"`
	VisitDate *time.Time   `json:"visit_date,omitempty"`
	PhotoURLs StringArray  `gorm:"type:text" json:"photo_urls,omitempty"`
	Status    ReviewStatus `gorm:"type:varchar(20);default:'published';index" json:"status"`

	// Set when an admin moderates the review
	ModeratorID *uint `gorm:"index" json:"moderator_id,omitempty"`

	AllergenScores []AllergenScore `gorm:"foreignKey:ReviewID" json:"-"`
	Answers        []Answer        `gorm:"foreignKey:ReviewID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// AllergenScore rates how well an establishment handles one allergen,
// 1 (poor) to 5 (excellent). At most one row per (review, allergen).
type AllergenScore struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ReviewID   uint     `gorm:"not null;uniqueIndex:idx_allergen_scores_review_allergen" json:"review_id"`
	AllergenID uint     `gorm:"not null;uniqueIndex:idx_allergen_scores_review_allergen" json:"allergen_id"`
	Allergen   Allergen `gorm:"foreignKey:AllergenID" json:"allergen,omitempty"`
	Score      int      `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
}

func (AllergenScore) TableName() string {
	return "allergen_scores"
}

// Answer stores one yes/no answer keyed by question code and the question
// version that was active when the answer was written.
type Answer struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ReviewID        uint   `gorm:"not null;uniqueIndex:idx_answers_review_question" json:"review_id"`
	QuestionCode    string `gorm:"not null;uniqueIndex:idx_answers_review_question" json:"question_code"`
	QuestionVersion int    `gorm:"not null;uniqueIndex:idx_answers_review_question" json:"question_version"`
	Value           *bool  `json:"value"`
}

func (Answer) TableName() string {
	return "answers"
}
