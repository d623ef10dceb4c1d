package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/service"
	"github.com/safedine/safedine-backend/internal/middleware"
	apperrors "github.com/safedine/safedine-backend/internal/errors"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// respondReviewError maps the service error taxonomy to transport codes:
// not-found 404, ownership 403, duplicate 409, validation 400, rest 500.
func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		apperrors.NotFound(c, apperrors.ReviewNotFound, "review not found")
	case errors.Is(err, service.ErrEstablishmentNotFound):
		apperrors.NotFound(c, apperrors.EstablishmentNotFound, "establishment not found")
	case errors.Is(err, service.ErrChainNotFound):
		apperrors.NotFound(c, apperrors.ChainNotFound, "chain not found")
	case errors.Is(err, service.ErrForbidden):
		apperrors.Forbidden(c, "you can only modify your own reviews")
	case errors.Is(err, service.ErrAlreadyReviewed):
		apperrors.Conflict(c, apperrors.ReviewAlreadyExists, "you have already reviewed this establishment")
	case errors.Is(err, service.ErrValidation):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid review payload")
	default:
		apperrors.InternalError(c, "")
	}
}

// CreateReview handles POST /reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	review, err := ctrl.reviewService.CreateReview(c.Request.Context(), userID, input)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReview handles GET /reviews/:id
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	review, err := ctrl.reviewService.GetReview(uint(reviewID))
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// UpdateReview handles PUT /reviews/:id. Admins may update any review;
// everyone else only their own.
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	var input service.UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	ownerID := &userID
	if c.GetString(middleware.UserRoleKey) == string(model.RoleAdmin) {
		ownerID = nil
	}

	review, err := ctrl.reviewService.UpdateReview(c.Request.Context(), uint(reviewID), input, ownerID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	ownerID := &userID
	if c.GetString(middleware.UserRoleKey) == string(model.RoleAdmin) {
		ownerID = nil
	}

	deletedID, err := ctrl.reviewService.DeleteReview(uint(reviewID), ownerID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": deletedID})
}

// ModerateReview handles PUT /admin/reviews/:id/moderate
func (ctrl *ReviewController) ModerateReview(c *gin.Context) {
	moderatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	var input struct {
		Status model.ReviewStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	review, err := ctrl.reviewService.ModerateReview(c.Request.Context(), uint(reviewID), moderatorID, input.Status)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apperrors.BadRequest(c, apperrors.ReviewInvalidStatus, "invalid review status")
			return
		}
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetEstablishmentReviews handles GET /establishments/:id/reviews; the id
// segment also accepts a Google place id
func (ctrl *ReviewController) GetEstablishmentReviews(c *gin.Context) {
	identifier := c.Param("id")
	page, pageSize := paginationParams(c)

	reviews, total, err := ctrl.reviewService.GetReviewsForEstablishment(identifier, page, pageSize)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetChainReviews handles GET /chains/:id/reviews
func (ctrl *ReviewController) GetChainReviews(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid chain id")
		return
	}

	page, pageSize := paginationParams(c)

	reviews, total, err := ctrl.reviewService.GetReviewsForChain(uint(chainID), page, pageSize)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetMyReviews handles GET /users/me/reviews
func (ctrl *ReviewController) GetMyReviews(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	reviews, err := ctrl.reviewService.GetReviewsForUser(userID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reviews})
}

// GetEstablishmentStats handles GET /establishments/:id/stats
func (ctrl *ReviewController) GetEstablishmentStats(c *gin.Context) {
	establishmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid establishment id")
		return
	}

	stats, err := ctrl.reviewService.GetEstablishmentStats(uint(establishmentID))
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
