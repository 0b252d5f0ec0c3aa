package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// ProjectHandler serves the project and delivery checklist routes.
type ProjectHandler struct {
	svc *service.ProjectService
}

// NewProjectHandler creates the project handler.
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List returns a page of projects.
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":   c.Query("keyword"),
		"status":    c.Query("status"),
		"type":      c.Query("type"),
		"client_id": c.Query("client_id"),
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, result)
}

// Get returns one project with client and equipment preloaded.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Success(c, project)
}

// Create inserts a project with its empty equipment aggregate.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "Client not found")
		return
	}

	Created(c, project)
}

// Update merges a partial update into a project.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Success(c, project)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves the project along the workflow.
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Success(c, project)
}

// Delete soft-deletes a project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Success(c, gin.H{"message": "Project deleted"})
}

// ============================================================
// Delivery checklist
// ============================================================

type deliveryItemRequest struct {
	Label    string `json:"label" binding:"required"`
	Sequence int    `json:"sequence"`
}

// AddDeliveryItem appends a checklist line.
func (h *ProjectHandler) AddDeliveryItem(c *gin.Context) {
	var req deliveryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.AddDeliveryItem(c.Request.Context(), c.Param("id"), req.Label, req.Sequence)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, item)
}

// ListDeliveryItems returns the checklist.
func (h *ProjectHandler) ListDeliveryItems(c *gin.Context) {
	items, err := h.svc.ListDeliveryItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": items})
}

// ToggleDeliveryItem flips a checklist line done/undone.
func (h *ProjectHandler) ToggleDeliveryItem(c *gin.Context) {
	item, err := h.svc.ToggleDeliveryItem(c.Request.Context(), c.Param("itemId"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "Delivery item not found")
		return
	}

	Success(c, item)
}

// RemoveDeliveryItem deletes a checklist line.
func (h *ProjectHandler) RemoveDeliveryItem(c *gin.Context) {
	if err := h.svc.RemoveDeliveryItem(c.Request.Context(), c.Param("itemId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Delivery item removed"})
}
