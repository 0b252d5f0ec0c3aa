package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/service"
)

// Handlers bundles all HTTP handlers for route wiring.
type Handlers struct {
	Auth       *AuthHandler
	Client     *ClientHandler
	Project    *ProjectHandler
	Equipment  *EquipmentHandler
	Document   *DocumentHandler
	Production *ProductionHandler
	Planning   *PlanningHandler
	Dashboard  *DashboardHandler
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Client:     NewClientHandler(svc.Client),
		Project:    NewProjectHandler(svc.Project),
		Equipment:  NewEquipmentHandler(svc.Equipment, svc.Export),
		Document:   NewDocumentHandler(svc.Document),
		Production: NewProductionHandler(svc.Production),
		Planning:   NewPlanningHandler(svc.Planning),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// NotFound writes a 404 envelope.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict writes a 409 envelope.
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError writes a 500 envelope.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps a service error onto the envelope: missing records are
// 404, everything else is treated as a domain conflict.
func HandleError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, notFoundMessage)
		return
	}
	Conflict(c, err.Error())
}

// GetUserID returns the authenticated user id from the context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
