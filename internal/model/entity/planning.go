package entity

import (
	"time"
)

// PlanningTaskStatus values
const (
	PlanningTaskStatusTodo       = "TODO"
	PlanningTaskStatusInProgress = "IN_PROGRESS"
	PlanningTaskStatusDone       = "DONE"
)

// PlanningTask is one bar on the project timeline. Dependencies are advisory:
// nothing forces a task to start after its prerequisites end.
type PlanningTask struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID    string     `json:"project_id" gorm:"size:32;not null;index"`
	Name         string     `json:"name" gorm:"size:256;not null"`
	Status       string     `json:"status" gorm:"size:16;not null;default:TODO"`
	ResourceID   string     `json:"resource_id" gorm:"size:32"`
	PlannedStart *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedEnd   *time.Time `json:"planned_end" gorm:"type:date"`
	Sequence     int        `json:"sequence" gorm:"not null;default:0"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Project      *Project         `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Resource     *PlanningResource `json:"resource,omitempty" gorm:"foreignKey:ResourceID"`
	Dependencies []TaskDependency `json:"dependencies,omitempty" gorm:"foreignKey:TaskID"`
}

func (PlanningTask) TableName() string {
	return "planning_tasks"
}

// PlanningResource is a person or machine that tasks can be assigned to.
type PlanningResource struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string    `json:"project_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Kind      string    `json:"kind" gorm:"size:32;not null;default:person"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlanningResource) TableName() string {
	return "planning_resources"
}

// TaskDependency links a task to a prerequisite task by id.
type TaskDependency struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	TaskID          string    `json:"task_id" gorm:"size:32;not null;index"`
	DependsOnTaskID string    `json:"depends_on_task_id" gorm:"size:32;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (TaskDependency) TableName() string {
	return "task_dependencies"
}
