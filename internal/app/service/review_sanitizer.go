package service

import (
	"time"

	"github.com/safedine/safedine-backend/internal/app/model"
)

// CreateReviewInput is the full payload for a new review. EstablishmentID
// accepts a numeric id or a "chain-<id>" pseudo-id; PlaceID is a fallback
// lookup for establishments imported from Google Places.
type CreateReviewInput struct {
	EstablishmentID string          `json:"establishment_id"`
	PlaceID         string          `json:"place_id"`
	Rating          *int            `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment         string          `json:"comment"`
	VisitDate       *time.Time      `json:"visit_date"`
	PhotoURLs       []string        `json:"photo_urls"`
	AllergenScores  map[string]int  `json:"allergen_scores"`
	YesNoAnswers    map[string]*bool `json:"yes_no_answers"`
}

// UpdateReviewInput is a partial update. A nil field means "leave it alone";
// after sanitization an empty string or empty map means the same thing, so a
// client resubmitting blank optimistic-UI state cannot erase stored data.
// Scores and answers, when present, replace their category wholesale.
type UpdateReviewInput struct {
	Rating         *int                `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment        *string             `json:"comment"`
	VisitDate      *time.Time          `json:"visit_date"`
	PhotoURLs      []string            `json:"photo_urls"`
	AllergenScores map[string]int      `json:"allergen_scores"`
	YesNoAnswers   map[string]*bool    `json:"yes_no_answers"`
	Status         *model.ReviewStatus `json:"-"`
	ModeratorID    *uint               `json:"-"`
}

// Sanitize removes payload fields that would otherwise read as "set to
// empty". Client state machines routinely resubmit stale blank fields;
// persisting them would silently erase prior input.
func Sanitize(input *UpdateReviewInput) {
	if input == nil {
		return
	}

	if input.Comment != nil && *input.Comment == "" {
		input.Comment = nil
	}
	if input.VisitDate != nil && input.VisitDate.IsZero() {
		input.VisitDate = nil
	}
	if len(input.PhotoURLs) == 0 {
		input.PhotoURLs = nil
	}
	if len(input.AllergenScores) == 0 {
		input.AllergenScores = nil
	}
	if len(input.YesNoAnswers) == 0 {
		input.YesNoAnswers = nil
	}
	if input.Status != nil && *input.Status == "" {
		input.Status = nil
	}
}

// HasMeaningfulContent reports whether sanitization left anything to apply.
// Callers treat "nothing left" as a no-op update, not an error.
func HasMeaningfulContent(input *UpdateReviewInput) bool {
	if input == nil {
		return false
	}
	return input.Rating != nil ||
		input.Comment != nil ||
		input.VisitDate != nil ||
		input.PhotoURLs != nil ||
		input.AllergenScores != nil ||
		input.YesNoAnswers != nil ||
		input.Status != nil ||
		input.ModeratorID != nil
}
