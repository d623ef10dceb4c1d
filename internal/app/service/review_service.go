package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound        = errors.New("review not found")
	ErrEstablishmentNotFound = errors.New("establishment not found")
	ErrChainNotFound         = errors.New("chain not found")
	ErrForbidden             = errors.New("caller does not own this review")
	ErrAlreadyReviewed       = errors.New("user has already reviewed this establishment")
	ErrValidation            = errors.New("invalid review payload")
	ErrTransactionFailed     = errors.New("review transaction failed")
)

// ReviewView is the denormalized review returned to API callers: header
// fields plus the child tables folded back into maps keyed by client codes.
type ReviewView struct {
	ID                   uint               `json:"id"`
	UserID               uint               `json:"user_id"`
	UserDisplayName      string             `json:"user_display_name"`
	EstablishmentID      uint               `json:"establishment_id"`
	EstablishmentName    string             `json:"establishment_name"`
	EstablishmentAddress string             `json:"establishment_address"`
	ChainID              *uint              `json:"chain_id,omitempty"`
	ChainName            string             `json:"chain_name,omitempty"`
	ChainLogoURL         string             `json:"chain_logo_url,omitempty"`
	Rating               *int               `json:"rating,omitempty"`
	Comment              string             `json:"comment"`
	VisitDate            *time.Time         `json:"visit_date,omitempty"`
	PhotoURLs            []string           `json:"photo_urls,omitempty"`
	Status               model.ReviewStatus `json:"status"`
	AllergenScores       map[string]int     `json:"allergen_scores"`
	YesNoAnswers         map[string]bool    `json:"yes_no_answers"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// EstablishmentStats is a read-time fold over an establishment's published
// reviews; nothing here is stored pre-aggregated.
type EstablishmentStats struct {
	EstablishmentID  uint               `json:"establishment_id"`
	ReviewCount      int64              `json:"review_count"`
	AverageRating    float64            `json:"average_rating"`
	AllergenAverages map[string]float64 `json:"allergen_averages"`
}

type ReviewService interface {
	CreateReview(ctx context.Context, userID uint, input CreateReviewInput) (*ReviewView, error)
	UpdateReview(ctx context.Context, reviewID uint, input UpdateReviewInput, ownerID *uint) (*ReviewView, error)
	DeleteReview(reviewID uint, ownerID *uint) (uint, error)
	ModerateReview(ctx context.Context, reviewID, moderatorID uint, status model.ReviewStatus) (*ReviewView, error)
	GetReview(reviewID uint) (*ReviewView, error)
	GetReviewsForEstablishment(identifier string, page, pageSize int) ([]ReviewView, int64, error)
	GetReviewsForChain(chainID uint, page, pageSize int) ([]ReviewView, int64, error)
	GetReviewsForUser(userID uint) ([]ReviewView, error)
	GetEstablishmentStats(establishmentID uint) (*EstablishmentStats, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	estRepo      repository.EstablishmentRepository
	refRepo      repository.ReferenceRepository
	questionBank *QuestionBank
	db           *gorm.DB
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	estRepo repository.EstablishmentRepository,
	refRepo repository.ReferenceRepository,
	questionBank *QuestionBank,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		estRepo:      estRepo,
		refRepo:      refRepo,
		questionBank: questionBank,
		db:           db,
	}
}

// CreateReview inserts the review header, its allergen scores and its
// answers in one transaction. At most one review may exist per
// (user, establishment); the pre-check catches the common case and the
// unique constraint catches the race.
func (s *reviewService) CreateReview(ctx context.Context, userID uint, input CreateReviewInput) (*ReviewView, error) {
	establishment, err := s.resolveEstablishment(input)
	if err != nil {
		return nil, err
	}

	logger.Info("Creating review", map[string]interface{}{
		"user_id":          userID,
		"establishment_id": establishment.ID,
	})

	existing, err := s.reviewRepo.FindByUserAndEstablishment(userID, establishment.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Create rejected: review already exists", map[string]interface{}{
			"user_id":          userID,
			"establishment_id": establishment.ID,
			"review_id":        existing.ID,
		})
		return nil, ErrAlreadyReviewed
	}

	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, ErrValidation
	}

	// Resolve children before opening the transaction; both only read
	// reference data.
	scores, err := s.buildScores(input.AllergenScores)
	if err != nil {
		return nil, err
	}
	answers, err := s.questionBank.ValidateAnswers(ctx, input.YesNoAnswers)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID:          userID,
		EstablishmentID: establishment.ID,
		Rating:          input.Rating,
		Comment:         input.Comment,
		VisitDate:       input.VisitDate,
		PhotoURLs:       model.StringArray(input.PhotoURLs),
		Status:          model.ReviewStatusPublished,
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	if err := tx.Create(review).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			// lost the race against a concurrent create
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if len(scores) > 0 {
		for i := range scores {
			scores[i].ReviewID = review.ID
		}
		if err := tx.Create(&scores).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}

	if len(answers) > 0 {
		for i := range answers {
			answers[i].ReviewID = review.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":        review.ID,
		"user_id":          userID,
		"establishment_id": establishment.ID,
		"score_count":      len(scores),
		"answer_count":     len(answers),
	})

	return s.GetReview(review.ID)
}

// UpdateReview applies a sanitized partial update. Header fields are diffed
// against the stored review; a category payload (scores, answers) replaces
// that category wholesale. A payload that sanitizes down to nothing is a
// no-op and opens no transaction.
func (s *reviewService) UpdateReview(ctx context.Context, reviewID uint, input UpdateReviewInput, ownerID *uint) (*ReviewView, error) {
	review, err := s.loadOwnedReview(reviewID, ownerID)
	if err != nil {
		return nil, err
	}

	Sanitize(&input)
	if !HasMeaningfulContent(&input) {
		logger.Debug("Update is a no-op after sanitization", map[string]interface{}{
			"review_id": reviewID,
		})
		return buildReviewView(review), nil
	}

	changes, err := headerChanges(review, &input)
	if err != nil {
		return nil, err
	}

	replaceScores := input.AllergenScores != nil
	replaceAnswers := input.YesNoAnswers != nil

	if len(changes) == 0 && !replaceScores && !replaceAnswers {
		// everything submitted matches the stored state
		return buildReviewView(review), nil
	}

	var scores []model.AllergenScore
	if replaceScores {
		if scores, err = s.buildScores(input.AllergenScores); err != nil {
			return nil, err
		}
	}
	var answers []model.Answer
	if replaceAnswers {
		if answers, err = s.questionBank.ValidateAnswers(ctx, input.YesNoAnswers); err != nil {
			return nil, err
		}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"review_id": reviewID,
			})
		}
	}()

	changes["updated_at"] = time.Now()
	if err := tx.Model(&model.Review{}).Where("id = ?", review.ID).Updates(changes).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if replaceScores {
		if err := s.reviewRepo.ReplaceAllergenScores(tx, review.ID, scores); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}
	if replaceAnswers {
		if err := s.reviewRepo.ReplaceAnswers(tx, review.ID, answers); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	logger.Info("Review updated", map[string]interface{}{
		"review_id":        review.ID,
		"header_changes":   len(changes) - 1, // minus updated_at
		"replaced_scores":  replaceScores,
		"replaced_answers": replaceAnswers,
	})

	return s.GetReview(review.ID)
}

// DeleteReview hard-deletes the review and its children. Returns the id of
// the deleted review.
func (s *reviewService) DeleteReview(reviewID uint, ownerID *uint) (uint, error) {
	review, err := s.loadOwnedReview(reviewID, ownerID)
	if err != nil {
		return 0, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransactionFailed, tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review deletion, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"review_id": review.ID,
			})
		}
	}()

	if err := s.reviewRepo.DeleteWithChildren(tx, review.ID); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": review.ID,
		"user_id":   review.UserID,
	})

	return review.ID, nil
}

// ModerateReview is a constrained update: only the status and the moderator
// attribution ever change, through the same update path.
func (s *reviewService) ModerateReview(ctx context.Context, reviewID, moderatorID uint, status model.ReviewStatus) (*ReviewView, error) {
	switch status {
	case model.ReviewStatusPublished, model.ReviewStatusPending, model.ReviewStatusRejected:
	default:
		return nil, ErrValidation
	}

	input := UpdateReviewInput{
		Status:      &status,
		ModeratorID: &moderatorID,
	}
	return s.UpdateReview(ctx, reviewID, input, nil)
}

func (s *reviewService) GetReview(reviewID uint) (*ReviewView, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return buildReviewView(review), nil
}

// GetReviewsForEstablishment accepts a numeric establishment id or a Google
// place id as identifier.
func (s *reviewService) GetReviewsForEstablishment(identifier string, page, pageSize int) ([]ReviewView, int64, error) {
	establishment, err := s.lookupEstablishment(identifier)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	reviews, total, err := s.reviewRepo.FindByEstablishmentID(establishment.ID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	return buildReviewViews(reviews), total, nil
}

// GetReviewsForChain returns the chain's reviews with per-review scores and
// answers; averaging across the chain is the consumer's read-time fold.
func (s *reviewService) GetReviewsForChain(chainID uint, page, pageSize int) ([]ReviewView, int64, error) {
	if _, err := s.estRepo.FindChainByID(chainID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrChainNotFound
		}
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	reviews, total, err := s.reviewRepo.FindByChainID(chainID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	return buildReviewViews(reviews), total, nil
}

func (s *reviewService) GetReviewsForUser(userID uint) ([]ReviewView, error) {
	reviews, err := s.reviewRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	return buildReviewViews(reviews), nil
}

func (s *reviewService) GetEstablishmentStats(establishmentID uint) (*EstablishmentStats, error) {
	if _, err := s.estRepo.FindByID(establishmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		return nil, err
	}

	count, average, err := s.reviewRepo.CountAndAverageRating(establishmentID)
	if err != nil {
		return nil, err
	}

	averages, err := s.reviewRepo.AllergenAveragesForEstablishment(establishmentID)
	if err != nil {
		return nil, err
	}

	clientAverages := make(map[string]float64, len(averages))
	for canonicalCode, avg := range averages {
		clientAverages[ToClientAllergen(canonicalCode)] = avg
	}

	return &EstablishmentStats{
		EstablishmentID:  establishmentID,
		ReviewCount:      count,
		AverageRating:    average,
		AllergenAverages: clientAverages,
	}, nil
}

// loadOwnedReview loads a review and enforces ownership when a caller id is
// supplied. Admin paths pass ownerID == nil.
func (s *reviewService) loadOwnedReview(reviewID uint, ownerID *uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if ownerID != nil && review.UserID != *ownerID {
		logger.Warn("Ownership check failed", map[string]interface{}{
			"review_id": reviewID,
			"owner_id":  review.UserID,
			"caller_id": *ownerID,
		})
		return nil, ErrForbidden
	}

	return review, nil
}

// resolveEstablishment turns the create payload's establishment reference
// into a concrete row: a numeric id, a "chain-<id>" pseudo-id (resolved to
// the chain's first establishment by insertion order), or a place id
// fallback.
func (s *reviewService) resolveEstablishment(input CreateReviewInput) (*model.Establishment, error) {
	ref := strings.TrimSpace(input.EstablishmentID)

	if ref != "" {
		if chainRef, ok := strings.CutPrefix(ref, "chain-"); ok {
			chainID, err := strconv.ParseUint(chainRef, 10, 32)
			if err != nil {
				return nil, ErrValidation
			}
			if _, err := s.estRepo.FindChainByID(uint(chainID)); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrChainNotFound
				}
				return nil, err
			}
			establishment, err := s.estRepo.FindFirstByChainID(uint(chainID))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// chain exists but has no locations to attach the review to
					return nil, ErrEstablishmentNotFound
				}
				return nil, err
			}
			return establishment, nil
		}

		id, err := strconv.ParseUint(ref, 10, 32)
		if err != nil {
			return nil, ErrValidation
		}
		establishment, err := s.estRepo.FindByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEstablishmentNotFound
			}
			return nil, err
		}
		return establishment, nil
	}

	if input.PlaceID != "" {
		establishment, err := s.estRepo.FindByPlaceID(input.PlaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEstablishmentNotFound
			}
			return nil, err
		}
		return establishment, nil
	}

	return nil, ErrValidation
}

func (s *reviewService) lookupEstablishment(identifier string) (*model.Establishment, error) {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		establishment, err := s.estRepo.FindByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEstablishmentNotFound
			}
			return nil, err
		}
		return establishment, nil
	}

	establishment, err := s.estRepo.FindByPlaceID(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		return nil, err
	}
	return establishment, nil
}

// buildScores translates the client score map to canonical codes and
// resolves each against the active allergen catalog. Unresolvable codes are
// skipped with a log; out-of-range scores are a hard validation failure.
func (s *reviewService) buildScores(clientScores map[string]int) ([]model.AllergenScore, error) {
	if len(clientScores) == 0 {
		return nil, nil
	}

	allergens, err := s.refRepo.ActiveAllergens()
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]model.Allergen, len(allergens))
	for _, a := range allergens {
		byCode[a.Code] = a
	}

	scores := make([]model.AllergenScore, 0, len(clientScores))
	for clientCode, score := range clientScores {
		if score < 1 || score > 5 {
			return nil, ErrValidation
		}

		canonical := ToCanonicalAllergen(clientCode)
		allergen, ok := byCode[canonical]
		if !ok {
			logger.Debug("Dropping score for unknown allergen code", map[string]interface{}{
				"client_code":    clientCode,
				"canonical_code": canonical,
			})
			continue
		}

		scores = append(scores, model.AllergenScore{
			AllergenID: allergen.ID,
			Allergen:   allergen,
			Score:      score,
		})
	}

	return scores, nil
}

// headerChanges computes the field-level diff between the stored review and
// the sanitized payload. Values are compared by deep equality, never by
// pointer identity.
func headerChanges(review *model.Review, input *UpdateReviewInput) (map[string]interface{}, error) {
	changes := make(map[string]interface{})

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, ErrValidation
		}
		if review.Rating == nil || *review.Rating != *input.Rating {
			changes["rating"] = *input.Rating
		}
	}
	if input.Comment != nil && *input.Comment != review.Comment {
		changes["comment"] = *input.Comment
	}
	if input.VisitDate != nil {
		if review.VisitDate == nil || !review.VisitDate.Equal(*input.VisitDate) {
			changes["visit_date"] = *input.VisitDate
		}
	}
	if input.PhotoURLs != nil && !reflect.DeepEqual([]string(review.PhotoURLs), input.PhotoURLs) {
		changes["photo_urls"] = model.StringArray(input.PhotoURLs)
	}
	if input.Status != nil {
		switch *input.Status {
		case model.ReviewStatusPublished, model.ReviewStatusPending, model.ReviewStatusRejected:
		default:
			return nil, ErrValidation
		}
		if *input.Status != review.Status {
			changes["status"] = *input.Status
		}
	}
	if input.ModeratorID != nil {
		if review.ModeratorID == nil || *review.ModeratorID != *input.ModeratorID {
			changes["moderator_id"] = *input.ModeratorID
		}
	}

	return changes, nil
}

// isUniqueViolation matches both the PostgreSQL ("violates unique
// constraint") and SQLite ("UNIQUE constraint failed") wording.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func buildReviewView(review *model.Review) *ReviewView {
	view := &ReviewView{
		ID:              review.ID,
		UserID:          review.UserID,
		UserDisplayName: review.User.DisplayName,
		EstablishmentID: review.EstablishmentID,
		Rating:          review.Rating,
		Comment:         review.Comment,
		VisitDate:       review.VisitDate,
		PhotoURLs:       review.PhotoURLs,
		Status:          review.Status,
		AllergenScores:  make(map[string]int, len(review.AllergenScores)),
		YesNoAnswers:    make(map[string]bool, len(review.Answers)),
		CreatedAt:       review.CreatedAt,
		UpdatedAt:       review.UpdatedAt,
	}

	view.EstablishmentName = review.Establishment.Name
	view.EstablishmentAddress = review.Establishment.Address
	if review.Establishment.ChainID != nil && review.Establishment.Chain != nil {
		view.ChainID = review.Establishment.ChainID
		view.ChainName = review.Establishment.Chain.Name
		view.ChainLogoURL = review.Establishment.Chain.LogoURL
	}

	for _, score := range review.AllergenScores {
		view.AllergenScores[ToClientAllergen(score.Allergen.Code)] = score.Score
	}
	for _, answer := range review.Answers {
		if answer.Value != nil {
			view.YesNoAnswers[ToClientQuestion(answer.QuestionCode)] = *answer.Value
		}
	}

	return view
}

func buildReviewViews(reviews []model.Review) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, *buildReviewView(&reviews[i]))
	}
	return views
}
