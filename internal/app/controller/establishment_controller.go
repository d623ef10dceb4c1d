package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/app/service"
	apperrors "github.com/safedine/safedine-backend/internal/errors"
)

type EstablishmentController struct {
	estService service.EstablishmentService
}

func NewEstablishmentController(estService service.EstablishmentService) *EstablishmentController {
	return &EstablishmentController{
		estService: estService,
	}
}

func respondEstablishmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEstablishmentNotFound):
		apperrors.NotFound(c, apperrors.EstablishmentNotFound, "establishment not found")
	case errors.Is(err, service.ErrChainNotFound):
		apperrors.NotFound(c, apperrors.ChainNotFound, "chain not found")
	case errors.Is(err, service.ErrValidation):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
	default:
		// constraint violations (duplicate place id, bad chain reference)
		// surface here rather than through service sentinels
		info := apperrors.ParseError(err, "establishment")
		status := http.StatusInternalServerError
		switch info.Code {
		case apperrors.EstablishmentPlaceExists, apperrors.ResourceAlreadyExists, apperrors.ResourceConflict:
			status = http.StatusConflict
		case apperrors.ResourceNotFound, apperrors.EstablishmentNotFound:
			status = http.StatusNotFound
		case apperrors.ValidationInvalidRange, apperrors.ValidationInvalidInput, apperrors.ValidationRequired:
			status = http.StatusBadRequest
		}
		apperrors.RespondWithError(c, status, info.Code, info.Message)
	}
}

// ListEstablishments handles GET /establishments
func (ctrl *EstablishmentController) ListEstablishments(c *gin.Context) {
	page, pageSize := paginationParams(c)

	filter := repository.EstablishmentFilter{
		Search: c.Query("search"),
		City:   c.Query("city"),
	}
	if chainParam := c.Query("chain_id"); chainParam != "" {
		if chainID, err := strconv.ParseUint(chainParam, 10, 32); err == nil {
			id := uint(chainID)
			filter.ChainID = &id
		}
	}

	establishments, total, err := ctrl.estService.ListEstablishments(filter, page, pageSize)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      establishments,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetEstablishment handles GET /establishments/:id
func (ctrl *EstablishmentController) GetEstablishment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid establishment id")
		return
	}

	establishment, err := ctrl.estService.GetEstablishment(uint(id))
	if err != nil {
		respondEstablishmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, establishment)
}

// GetChain handles GET /chains/:id
func (ctrl *EstablishmentController) GetChain(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid chain id")
		return
	}

	chain, err := ctrl.estService.GetChain(uint(id))
	if err != nil {
		respondEstablishmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, chain)
}

type establishmentInput struct {
	Name         string   `json:"name" binding:"required"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Phone        string   `json:"phone"`
	Website      string   `json:"website"`
	ImageURL     string   `json:"image_url"`
	PlaceID      *string  `json:"place_id"`
	ChainID      *uint    `json:"chain_id"`
	CuisineTypes []string `json:"cuisine_types"`
}

// CreateEstablishment handles POST /admin/establishments
func (ctrl *EstablishmentController) CreateEstablishment(c *gin.Context) {
	var input establishmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	establishment := &model.Establishment{
		Name:         input.Name,
		Address:      input.Address,
		City:         input.City,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Phone:        input.Phone,
		Website:      input.Website,
		ImageURL:     input.ImageURL,
		PlaceID:      input.PlaceID,
		ChainID:      input.ChainID,
		CuisineTypes: pq.StringArray(input.CuisineTypes),
	}

	created, err := ctrl.estService.CreateEstablishment(establishment)
	if err != nil {
		respondEstablishmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateEstablishment handles PUT /admin/establishments/:id
func (ctrl *EstablishmentController) UpdateEstablishment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid establishment id")
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	// only whitelisted columns may change through this endpoint
	updates := make(map[string]interface{})
	for _, field := range []string{"name", "address", "city", "phone", "website", "image_url", "chain_id"} {
		if value, ok := input[field]; ok {
			updates[field] = value
		}
	}

	establishment, err := ctrl.estService.UpdateEstablishment(uint(id), updates)
	if err != nil {
		respondEstablishmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, establishment)
}

// DeleteEstablishment handles DELETE /admin/establishments/:id
func (ctrl *EstablishmentController) DeleteEstablishment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid establishment id")
		return
	}

	if err := ctrl.estService.DeleteEstablishment(uint(id)); err != nil {
		respondEstablishmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// RecomputeStats handles POST /admin/establishments/recompute-stats
func (ctrl *EstablishmentController) RecomputeStats(c *gin.Context) {
	updated, err := ctrl.estService.RecomputeReviewStats()
	if err != nil {
		apperrors.InternalError(c, "stats recompute failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishments_updated": updated})
}
