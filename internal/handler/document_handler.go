package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// DocumentHandler serves the versioned project document routes.
type DocumentHandler struct {
	svc *service.DocumentService
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// List returns a project's documents, optionally filtered by type.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), c.Param("id"), c.Query("type"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": docs})
}

// Get returns one document.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("docId"))
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}

	Success(c, doc)
}

// Latest returns the highest-version document of a type.
func (h *DocumentHandler) Latest(c *gin.Context) {
	docType := c.Query("type")
	if docType == "" {
		BadRequest(c, "Document type is required")
		return
	}

	doc, err := h.svc.Latest(c.Request.Context(), c.Param("id"), docType)
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}

	Success(c, doc)
}

// CreateQuotation snapshots the equipment into a new quotation version.
func (h *DocumentHandler) CreateQuotation(c *gin.Context) {
	var req service.CreateQuotationRequest
	_ = c.ShouldBindJSON(&req)

	doc, err := h.svc.CreateQuotation(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, doc)
}

// CreateInvoice snapshots the equipment into a new invoice version.
func (h *DocumentHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateQuotationRequest
	_ = c.ShouldBindJSON(&req)

	doc, err := h.svc.CreateInvoice(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, doc)
}

// CreateBOM snapshots the equipment into a new bill-of-materials workbook.
func (h *DocumentHandler) CreateBOM(c *gin.Context) {
	doc, err := h.svc.CreateBOM(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, doc)
}

// Finalize moves a draft document to FINAL and supersedes earlier finals.
func (h *DocumentHandler) Finalize(c *gin.Context) {
	doc, err := h.svc.Finalize(c.Request.Context(), c.Param("docId"), GetUserID(c))
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}

	Success(c, doc)
}

// Supersede manually retires a FINAL document.
func (h *DocumentHandler) Supersede(c *gin.Context) {
	doc, err := h.svc.MarkSuperseded(c.Request.Context(), c.Param("docId"))
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}

	Success(c, doc)
}

// Download streams the stored file of a document.
func (h *DocumentHandler) Download(c *gin.Context) {
	object, doc, err := h.svc.Download(c.Request.Context(), c.Param("docId"))
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Header("Content-Type", doc.MimeType)
	io.Copy(c.Writer, object)
}

// Preview renders the on-screen HTML of a priced document.
func (h *DocumentHandler) Preview(c *gin.Context) {
	html, err := h.svc.RenderPreview(c.Request.Context(), c.Param("docId"))
	if err != nil {
		HandleError(c, err, "Document not found")
		return
	}

	c.Data(200, "text/html; charset=utf-8", []byte(html))
}
