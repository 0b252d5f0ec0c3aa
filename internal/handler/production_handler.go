package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// ProductionHandler serves the production stage routes.
type ProductionHandler struct {
	svc *service.ProductionService
}

// NewProductionHandler creates the production handler.
func NewProductionHandler(svc *service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// ListStages returns a project's stages in build order.
func (h *ProductionHandler) ListStages(c *gin.Context) {
	stages, err := h.svc.ListStages(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": stages})
}

// CreateStage appends a stage to a project.
func (h *ProductionHandler) CreateStage(c *gin.Context) {
	var req service.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	stage, err := h.svc.CreateStage(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, stage)
}

// GetStage returns a stage with comments and photos.
func (h *ProductionHandler) GetStage(c *gin.Context) {
	stage, err := h.svc.GetStage(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, stage)
}

// DeleteStage removes a stage with its comments and photos.
func (h *ProductionHandler) DeleteStage(c *gin.Context) {
	if err := h.svc.DeleteStage(c.Request.Context(), c.Param("stageId")); err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, gin.H{"message": "Stage deleted"})
}

// Start moves a stage to IN_PROGRESS.
func (h *ProductionHandler) Start(c *gin.Context) {
	stage, err := h.svc.Start(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, stage)
}

// Complete finishes a running stage.
func (h *ProductionHandler) Complete(c *gin.Context) {
	stage, err := h.svc.Complete(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, stage)
}

type blockRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Block halts a running stage with a reason.
func (h *ProductionHandler) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	stage, err := h.svc.Block(c.Request.Context(), c.Param("stageId"), req.Reason)
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, stage)
}

type progressRequest struct {
	Progress int `json:"progress"`
}

// SetProgress updates the progress percentage of a running stage.
func (h *ProductionHandler) SetProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	stage, err := h.svc.SetProgress(c.Request.Context(), c.Param("stageId"), req.Progress)
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Success(c, stage)
}

// Summary aggregates a project's stage statuses.
func (h *ProductionHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, summary)
}

// ============================================================
// Comments and photos
// ============================================================

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment appends a shop-floor note to a stage.
func (h *ProductionHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), c.Param("stageId"), GetUserID(c), req.Content)
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Created(c, comment)
}

// ListComments returns a stage's comments.
func (h *ProductionHandler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": comments})
}

// RemoveComment deletes a comment.
func (h *ProductionHandler) RemoveComment(c *gin.Context) {
	if err := h.svc.RemoveComment(c.Request.Context(), c.Param("commentId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Comment removed"})
}

// AddPhoto stores a progress photo on a stage.
func (h *ProductionHandler) AddPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	photo, err := h.svc.AddPhoto(c.Request.Context(), c.Param("stageId"), GetUserID(c),
		file, header.Filename, header.Size, contentType, c.PostForm("caption"))
	if err != nil {
		HandleError(c, err, "Stage not found")
		return
	}

	Created(c, photo)
}

// ListPhotos returns a stage's photos.
func (h *ProductionHandler) ListPhotos(c *gin.Context) {
	photos, err := h.svc.ListPhotos(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": photos})
}

// RemovePhoto deletes a photo record.
func (h *ProductionHandler) RemovePhoto(c *gin.Context) {
	if err := h.svc.RemovePhoto(c.Request.Context(), c.Param("photoId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Photo removed"})
}

// DownloadPhoto streams a stored photo.
func (h *ProductionHandler) DownloadPhoto(c *gin.Context) {
	object, photo, err := h.svc.DownloadPhoto(c.Request.Context(), c.Param("photoId"))
	if err != nil {
		HandleError(c, err, "Photo not found")
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", `inline; filename="`+photo.FileName+`"`)
	c.Header("Content-Type", photo.MimeType)
	io.Copy(c.Writer, object)
}
