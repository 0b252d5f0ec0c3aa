package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// PlanningHandler serves the planning board routes.
type PlanningHandler struct {
	svc *service.PlanningService
}

// NewPlanningHandler creates the planning handler.
func NewPlanningHandler(svc *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{svc: svc}
}

// ListTasks returns a project's tasks in timeline order.
func (h *PlanningHandler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": tasks})
}

// CreateTask appends a task to the project timeline.
func (h *PlanningHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, task)
}

// GetTask returns one task with its dependencies.
func (h *PlanningHandler) GetTask(c *gin.Context) {
	task, err := h.svc.GetTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Success(c, task)
}

// UpdateTask merges a partial update into a task.
func (h *PlanningHandler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.UpdateTask(c.Request.Context(), c.Param("taskId"), &req)
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Success(c, task)
}

// SetTaskStatus moves a task between TODO, IN_PROGRESS and DONE.
func (h *PlanningHandler) SetTaskStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.SetTaskStatus(c.Request.Context(), c.Param("taskId"), req.Status)
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Success(c, task)
}

type dayDeltaRequest struct {
	Days int `json:"days"`
}

// ShiftTask moves the whole bar by a day delta.
func (h *PlanningHandler) ShiftTask(c *gin.Context) {
	var req dayDeltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.ShiftTask(c.Request.Context(), c.Param("taskId"), req.Days)
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Success(c, task)
}

// ResizeTask moves only the end date by a day delta.
func (h *PlanningHandler) ResizeTask(c *gin.Context) {
	var req dayDeltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.ResizeTask(c.Request.Context(), c.Param("taskId"), req.Days)
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Success(c, task)
}

// DeleteTask removes a task.
func (h *PlanningHandler) DeleteTask(c *gin.Context) {
	if err := h.svc.DeleteTask(c.Request.Context(), c.Param("taskId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Task deleted"})
}

// ============================================================
// Resources
// ============================================================

type resourceRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind"`
}

// CreateResource adds a person or machine to the project.
func (h *PlanningHandler) CreateResource(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.CreateResource(c.Request.Context(), c.Param("id"), req.Name, req.Kind)
	if err != nil {
		HandleError(c, err, "Project not found")
		return
	}

	Created(c, res)
}

// ListResources returns a project's resources.
func (h *PlanningHandler) ListResources(c *gin.Context) {
	resources, err := h.svc.ListResources(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": resources})
}

// DeleteResource removes a resource.
func (h *PlanningHandler) DeleteResource(c *gin.Context) {
	if err := h.svc.DeleteResource(c.Request.Context(), c.Param("resourceId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Resource deleted"})
}

// ============================================================
// Dependencies
// ============================================================

type dependencyRequest struct {
	DependsOnTaskID string `json:"depends_on_task_id" binding:"required"`
}

// AddDependency links a task to a prerequisite.
func (h *PlanningHandler) AddDependency(c *gin.Context) {
	var req dependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dep, err := h.svc.AddDependency(c.Request.Context(), c.Param("taskId"), req.DependsOnTaskID)
	if err != nil {
		HandleError(c, err, "Task not found")
		return
	}

	Created(c, dep)
}

// RemoveDependency unlinks a prerequisite.
func (h *PlanningHandler) RemoveDependency(c *gin.Context) {
	if err := h.svc.RemoveDependency(c.Request.Context(), c.Param("depId")); err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"message": "Dependency removed"})
}
