package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MediaHandler struct {
	media  service.MediaService
	logger *zap.Logger
}

func NewMediaHandler(media service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, logger: logger}
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
	ContentType string `json:"contentType" binding:"required"`
}

// RequestUploadURL godoc
// @Summary Request a pre-signed URL to upload an image or a video
// @Description The client PUTs the file to the returned URL, then confirms with the object key.
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uploadRequest body RequestUploadURLRequest true "Upload content type"
// @Success 200 {object} service.UploadURLResponse "Pre-signed URL and object key"
// @Failure 400 {object} gin.H "Unsupported media type"
// @Router /media/upload-url [post]
func (h *MediaHandler) RequestUploadURL(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	resp, err := h.media.RequestUploadURL(c.Request.Context(), ownerID, req.ContentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload godoc
// @Summary Confirm a finished upload
// @Description Records the upload and returns its permanent URL.
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confirmRequest body ConfirmUploadRequest true "Upload confirmation details"
// @Success 201 {object} domain.Upload
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Router /media/confirm [post]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	upload, err := h.media.ConfirmUpload(c.Request.Context(), service.ConfirmUploadInput{
		OwnerID:     ownerID,
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.FileSize,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// DeleteUpload godoc
// @Summary Delete one of the caller's uploads
// @Tags Media
// @Security BearerAuth
// @Param uploadId path string true "Upload ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Upload belongs to another user"
// @Failure 404 {object} gin.H "Upload not found"
// @Router /media/{uploadId} [delete]
func (h *MediaHandler) DeleteUpload(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	uploadID, ok := pathID(c, "uploadId")
	if !ok {
		return
	}
	if err := h.media.DeleteUpload(c.Request.Context(), ownerID, uploadID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
