package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safedine/safedine-backend/internal/storage"
	apperrors "github.com/safedine/safedine-backend/internal/errors"
)

var allowedUploadFolders = map[string]bool{
	"reviews":        true,
	"establishments": true,
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(s3Storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: s3Storage,
	}
}

// GetPresignedURL handles POST /uploads/presigned-url
func (ctrl *UploadController) GetPresignedURL(c *gin.Context) {
	var input struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
		Folder      string `json:"folder" binding:"required"`
		Size        int64  `json:"size"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid input")
		return
	}

	if !allowedUploadFolders[input.Folder] {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid upload folder")
		return
	}

	if err := ctrl.storage.ValidateUpload(input.Filename, input.Size); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}

	response, err := ctrl.storage.GeneratePresignedURL(input.Filename, input.ContentType, input.Folder)
	if err != nil {
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "failed to create upload URL")
		return
	}

	c.JSON(http.StatusOK, response)
}
