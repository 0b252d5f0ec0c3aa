package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// EquipmentHandler serves the equipment configurator routes.
type EquipmentHandler struct {
	svc    *service.EquipmentService
	export *service.ExportService
}

// NewEquipmentHandler creates the equipment handler.
func NewEquipmentHandler(svc *service.EquipmentService, export *service.ExportService) *EquipmentHandler {
	return &EquipmentHandler{svc: svc, export: export}
}

// Get returns a project's equipment aggregate with items and totals.
func (h *EquipmentHandler) Get(c *gin.Context) {
	eq, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Success(c, eq)
}

// AddItem appends an equipment line.
func (h *EquipmentHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Created(c, item)
}

// UpdateItem merges a partial update into an equipment line.
func (h *EquipmentHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("itemId"), &req)
	if err != nil {
		HandleError(c, err, "Equipment item not found")
		return
	}

	Success(c, item)
}

// RemoveItem deletes an equipment line.
func (h *EquipmentHandler) RemoveItem(c *gin.Context) {
	if err := h.svc.RemoveItem(c.Request.Context(), c.Param("itemId")); err != nil {
		HandleError(c, err, "Equipment item not found")
		return
	}

	Success(c, gin.H{"message": "Item removed"})
}

type vatRateRequest struct {
	VatRate float64 `json:"vat_rate"`
}

// SetVatRate changes the VAT rate on the aggregate.
func (h *EquipmentHandler) SetVatRate(c *gin.Context) {
	var req vatRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	eq, err := h.svc.SetVatRate(c.Request.Context(), c.Param("id"), req.VatRate)
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Success(c, eq)
}

// Freeze locks the configuration.
func (h *EquipmentHandler) Freeze(c *gin.Context) {
	eq, err := h.svc.Freeze(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Success(c, eq)
}

// Unfreeze reopens the configuration.
func (h *EquipmentHandler) Unfreeze(c *gin.Context) {
	eq, err := h.svc.Unfreeze(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Success(c, eq)
}

// ExportCSV downloads the item list as CSV.
func (h *EquipmentHandler) ExportCSV(c *gin.Context) {
	eq, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	data, err := h.export.ExportItemsCSV(eq)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="equipment.csv"`)
	c.Data(200, "text/csv; charset=utf-8", data)
}

// ImportCSV replaces the item list with an uploaded CSV.
func (h *EquipmentHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}
	defer file.Close()

	items, err := h.export.ParseItemsCSV(file)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	eq, err := h.svc.ReplaceItems(c.Request.Context(), c.Param("id"), items)
	if err != nil {
		HandleError(c, err, "Equipment not found")
		return
	}

	Success(c, eq)
}
