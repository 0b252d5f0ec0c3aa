package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// ClientHandler serves the client routes.
type ClientHandler struct {
	svc *service.ClientService
}

// NewClientHandler creates the client handler.
func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// List returns a page of clients.
func (h *ClientHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
		"status":  c.Query("status"),
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, result)
}

// ListActive returns all non-archived clients, for pickers.
func (h *ClientHandler) ListActive(c *gin.Context) {
	clients, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": clients})
}

// Get returns one client.
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err, "Client not found")
		return
	}

	Success(c, client)
}

// Create inserts a client.
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Created(c, client)
}

// Update merges a partial update into a client.
func (h *ClientHandler) Update(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err, "Client not found")
		return
	}

	Success(c, client)
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

// Archive retires a client without removing it.
func (h *ClientHandler) Archive(c *gin.Context) {
	var req archiveRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.Archive(c.Request.Context(), c.Param("id"), GetUserID(c), req.Reason); err != nil {
		HandleError(c, err, "Client not found")
		return
	}

	Success(c, gin.H{"message": "Client archived"})
}
