package repository

import (
	"context"
	"errors"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// PlanningRepository persists planning tasks, resources and dependencies.
type PlanningRepository struct {
	db *gorm.DB
}

// NewPlanningRepository creates the planning repository.
func NewPlanningRepository(db *gorm.DB) *PlanningRepository {
	return &PlanningRepository{db: db}
}

// FindTaskByID loads a task with its dependencies.
func (r *PlanningRepository) FindTaskByID(ctx context.Context, id string) (*entity.PlanningTask, error) {
	var task entity.PlanningTask
	err := r.db.WithContext(ctx).
		Preload("Dependencies").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// CreateTask inserts a task.
func (r *PlanningRepository) CreateTask(ctx context.Context, task *entity.PlanningTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// UpdateTask saves a task.
func (r *PlanningRepository) UpdateTask(ctx context.Context, task *entity.PlanningTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// DeleteTask removes a task and scrubs every dependency that references it,
// in either direction, in one transaction.
func (r *PlanningRepository) DeleteTask(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.TaskDependency{},
			"task_id = ? OR depends_on_task_id = ?", id, id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.PlanningTask{}, "id = ?", id).Error
	})
}

// ListTasks returns a project's tasks in timeline order.
func (r *PlanningRepository) ListTasks(ctx context.Context, projectID string) ([]entity.PlanningTask, error) {
	var tasks []entity.PlanningTask
	err := r.db.WithContext(ctx).
		Preload("Dependencies").
		Where("project_id = ?", projectID).
		Order("sequence ASC, planned_start ASC").
		Find(&tasks).Error
	return tasks, err
}

// CountOpenTasks counts tasks that are not DONE across all projects.
func (r *PlanningRepository) CountOpenTasks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PlanningTask{}).
		Where("status <> ?", entity.PlanningTaskStatusDone).
		Count(&count).Error
	return count, err
}

// ============================================================
// Resources
// ============================================================

// FindResourceByID loads one resource.
func (r *PlanningRepository) FindResourceByID(ctx context.Context, id string) (*entity.PlanningResource, error) {
	var res entity.PlanningResource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// CreateResource inserts a resource.
func (r *PlanningRepository) CreateResource(ctx context.Context, res *entity.PlanningResource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// ListResources returns a project's resources.
func (r *PlanningRepository) ListResources(ctx context.Context, projectID string) ([]entity.PlanningResource, error) {
	var resources []entity.PlanningResource
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&resources).Error
	return resources, err
}

// DeleteResource removes a resource and clears the assignment on every task
// that referenced it.
func (r *PlanningRepository) DeleteResource(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.PlanningTask{}).
			Where("resource_id = ?", id).
			Update("resource_id", "").Error; err != nil {
			return err
		}
		return tx.Delete(&entity.PlanningResource{}, "id = ?", id).Error
	})
}

// ============================================================
// Dependencies
// ============================================================

// CreateDependency links a task to a prerequisite.
func (r *PlanningRepository) CreateDependency(ctx context.Context, dep *entity.TaskDependency) error {
	return r.db.WithContext(ctx).Create(dep).Error
}

// DeleteDependency removes a dependency; deleting an absent id is a no-op.
func (r *PlanningRepository) DeleteDependency(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.TaskDependency{}, "id = ?", id).Error
}

// ListDependencies returns a task's prerequisites.
func (r *PlanningRepository) ListDependencies(ctx context.Context, taskID string) ([]entity.TaskDependency, error) {
	var deps []entity.TaskDependency
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Find(&deps).Error
	return deps, err
}
