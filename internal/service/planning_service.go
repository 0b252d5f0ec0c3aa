package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// PlanningService manages the project timeline: tasks, resources and advisory
// dependencies. Date moves arrive as whole-day deltas.
type PlanningService struct {
	planRepo    *repository.PlanningRepository
	projectRepo *repository.ProjectRepository
}

// NewPlanningService creates the planning service.
func NewPlanningService(planRepo *repository.PlanningRepository, projectRepo *repository.ProjectRepository) *PlanningService {
	return &PlanningService{planRepo: planRepo, projectRepo: projectRepo}
}

// CreateTaskRequest carries a new planning task.
type CreateTaskRequest struct {
	Name         string     `json:"name" binding:"required"`
	ResourceID   string     `json:"resource_id"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
	Sequence     int        `json:"sequence"`
	Notes        string     `json:"notes"`
}

// UpdateTaskRequest carries a partial task update; nil fields are kept.
type UpdateTaskRequest struct {
	Name         *string    `json:"name"`
	ResourceID   *string    `json:"resource_id"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
	Sequence     *int       `json:"sequence"`
	Notes        *string    `json:"notes"`
}

// CreateTask appends a task to the project timeline.
func (s *PlanningService) CreateTask(ctx context.Context, projectID string, req *CreateTaskRequest) (*entity.PlanningTask, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if req.PlannedStart != nil && req.PlannedEnd != nil && req.PlannedEnd.Before(*req.PlannedStart) {
		return nil, fmt.Errorf("planned end precedes planned start")
	}

	now := time.Now()
	task := &entity.PlanningTask{
		ID:           uuid.New().String()[:32],
		ProjectID:    projectID,
		Name:         req.Name,
		Status:       entity.PlanningTaskStatusTodo,
		ResourceID:   req.ResourceID,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		Sequence:     req.Sequence,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.planRepo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetTask returns a task with its dependencies.
func (s *PlanningService) GetTask(ctx context.Context, id string) (*entity.PlanningTask, error) {
	return s.planRepo.FindTaskByID(ctx, id)
}

// ListTasks returns a project's tasks in timeline order.
func (s *PlanningService) ListTasks(ctx context.Context, projectID string) ([]entity.PlanningTask, error) {
	return s.planRepo.ListTasks(ctx, projectID)
}

// UpdateTask merges the request into the task.
func (s *PlanningService) UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*entity.PlanningTask, error) {
	task, err := s.planRepo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.ResourceID != nil {
		task.ResourceID = *req.ResourceID
	}
	if req.PlannedStart != nil {
		task.PlannedStart = req.PlannedStart
	}
	if req.PlannedEnd != nil {
		task.PlannedEnd = req.PlannedEnd
	}
	if req.Sequence != nil {
		task.Sequence = *req.Sequence
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}
	if task.PlannedStart != nil && task.PlannedEnd != nil && task.PlannedEnd.Before(*task.PlannedStart) {
		return nil, fmt.Errorf("planned end precedes planned start")
	}
	task.UpdatedAt = time.Now()

	if err := s.planRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// SetTaskStatus moves a task between TODO, IN_PROGRESS and DONE.
func (s *PlanningService) SetTaskStatus(ctx context.Context, id, status string) (*entity.PlanningTask, error) {
	switch status {
	case entity.PlanningTaskStatusTodo, entity.PlanningTaskStatusInProgress, entity.PlanningTaskStatusDone:
	default:
		return nil, fmt.Errorf("unknown task status %q", status)
	}

	task, err := s.planRepo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	task.UpdatedAt = time.Now()

	if err := s.planRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return task, nil
}

// ShiftTask moves the whole bar by a day delta. A zero delta, or a task
// without dates, is left untouched: nothing is written unless the stored
// dates would actually change.
func (s *PlanningService) ShiftTask(ctx context.Context, id string, days int) (*entity.PlanningTask, error) {
	task, err := s.planRepo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if days == 0 || (task.PlannedStart == nil && task.PlannedEnd == nil) {
		return task, nil
	}

	if task.PlannedStart != nil {
		start := task.PlannedStart.AddDate(0, 0, days)
		task.PlannedStart = &start
	}
	if task.PlannedEnd != nil {
		end := task.PlannedEnd.AddDate(0, 0, days)
		task.PlannedEnd = &end
	}
	task.UpdatedAt = time.Now()

	if err := s.planRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("shift task: %w", err)
	}
	return task, nil
}

// ResizeTask moves only the end date by a day delta, clamped so the bar
// never ends before it starts.
func (s *PlanningService) ResizeTask(ctx context.Context, id string, days int) (*entity.PlanningTask, error) {
	task, err := s.planRepo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if days == 0 || task.PlannedEnd == nil {
		return task, nil
	}

	end := task.PlannedEnd.AddDate(0, 0, days)
	if task.PlannedStart != nil && end.Before(*task.PlannedStart) {
		end = *task.PlannedStart
	}
	if task.PlannedEnd.Equal(end) {
		return task, nil
	}
	task.PlannedEnd = &end
	task.UpdatedAt = time.Now()

	if err := s.planRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("resize task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task; dependencies referencing it are scrubbed.
func (s *PlanningService) DeleteTask(ctx context.Context, id string) error {
	return s.planRepo.DeleteTask(ctx, id)
}

// ============================================================
// Resources
// ============================================================

// CreateResource adds a person or machine to the project.
func (s *PlanningService) CreateResource(ctx context.Context, projectID, name, kind string) (*entity.PlanningResource, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = "person"
	}

	now := time.Now()
	res := &entity.PlanningResource{
		ID:        uuid.New().String()[:32],
		ProjectID: projectID,
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.planRepo.CreateResource(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// ListResources returns a project's resources.
func (s *PlanningService) ListResources(ctx context.Context, projectID string) ([]entity.PlanningResource, error) {
	return s.planRepo.ListResources(ctx, projectID)
}

// DeleteResource removes a resource; assignments on tasks are cleared.
func (s *PlanningService) DeleteResource(ctx context.Context, id string) error {
	return s.planRepo.DeleteResource(ctx, id)
}

// ============================================================
// Dependencies
// ============================================================

// AddDependency links a task to a prerequisite. Dependencies are advisory:
// the dates are not validated against each other, only the references are.
func (s *PlanningService) AddDependency(ctx context.Context, taskID, dependsOnTaskID string) (*entity.TaskDependency, error) {
	if taskID == dependsOnTaskID {
		return nil, fmt.Errorf("task cannot depend on itself")
	}

	task, err := s.planRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	prereq, err := s.planRepo.FindTaskByID(ctx, dependsOnTaskID)
	if err != nil {
		return nil, fmt.Errorf("find prerequisite: %w", err)
	}
	if task.ProjectID != prereq.ProjectID {
		return nil, fmt.Errorf("dependency crosses projects")
	}
	for _, dep := range task.Dependencies {
		if dep.DependsOnTaskID == dependsOnTaskID {
			return nil, fmt.Errorf("dependency already exists")
		}
	}

	dep := &entity.TaskDependency{
		ID:              uuid.New().String()[:32],
		TaskID:          taskID,
		DependsOnTaskID: dependsOnTaskID,
		CreatedAt:       time.Now(),
	}
	if err := s.planRepo.CreateDependency(ctx, dep); err != nil {
		return nil, fmt.Errorf("add dependency: %w", err)
	}
	return dep, nil
}

// RemoveDependency unlinks a prerequisite; absent ids are a no-op.
func (s *PlanningService) RemoveDependency(ctx context.Context, id string) error {
	return s.planRepo.DeleteDependency(ctx, id)
}
