package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// statusTransitions is the forward workflow; closing is allowed from any
// non-closed state.
var statusTransitions = map[string][]string{
	entity.ProjectStatusDraft:        {entity.ProjectStatusQuoted},
	entity.ProjectStatusQuoted:       {entity.ProjectStatusConfirmed, entity.ProjectStatusDraft},
	entity.ProjectStatusConfirmed:    {entity.ProjectStatusInProduction},
	entity.ProjectStatusInProduction: {entity.ProjectStatusDelivered},
	entity.ProjectStatusDelivered:    {},
	entity.ProjectStatusClosed:       {},
}

// ProjectService manages projects and their delivery checklists.
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	seqRepo     *repository.SequenceRepository
	defaultVAT  float64
}

// NewProjectService creates the project service.
func NewProjectService(projectRepo *repository.ProjectRepository, clientRepo *repository.ClientRepository, seqRepo *repository.SequenceRepository, defaultVAT float64) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		seqRepo:     seqRepo,
		defaultVAT:  defaultVAT,
	}
}

// CreateProjectRequest carries the fields of a new project.
type CreateProjectRequest struct {
	Name         string                `json:"name" binding:"required"`
	ClientID     string                `json:"client_id" binding:"required"`
	Type         string                `json:"type"`
	Description  string                `json:"description"`
	Boat         entity.BoatIdentity   `json:"boat"`
	Spec         entity.Specification  `json:"spec"`
	PlannedStart *time.Time            `json:"planned_start"`
	PlannedEnd   *time.Time            `json:"planned_end"`
}

// UpdateProjectRequest carries a partial update; nil/empty fields are kept.
type UpdateProjectRequest struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Boat         *entity.BoatIdentity  `json:"boat"`
	Spec         *entity.Specification `json:"spec"`
	PlannedStart *time.Time            `json:"planned_start"`
	PlannedEnd   *time.Time            `json:"planned_end"`
}

// ProjectListResult is one page of projects.
type ProjectListResult struct {
	Items      []entity.Project `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// Create allocates a project number and inserts the project together with its
// empty equipment aggregate in one transaction.
func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("client lookup: %w", err)
	}

	number, err := s.seqRepo.Next(ctx, entity.SequenceProject)
	if err != nil {
		return nil, fmt.Errorf("allocate project number: %w", err)
	}

	projectType := req.Type
	if projectType == "" {
		projectType = entity.ProjectTypeNewBuild
	}

	now := time.Now()
	project := &entity.Project{
		ID:            uuid.New().String()[:32],
		ProjectNumber: number,
		Name:          req.Name,
		ClientID:      req.ClientID,
		Type:          projectType,
		Status:        entity.ProjectStatusDraft,
		Boat:          req.Boat,
		Spec:          req.Spec,
		Description:   req.Description,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		Version:       1,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	equipment := &entity.Equipment{
		ID:        uuid.New().String()[:32],
		Status:    entity.EquipmentStatusDraft,
		VatRate:   s.defaultVAT,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projectRepo.CreateWithEquipment(ctx, project, equipment); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	project.Equipment = equipment
	return project, nil
}

// Get returns a project with client and equipment preloaded.
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

// Update merges the request into the project and increments the version.
func (s *ProjectService) Update(ctx context.Context, id string, req *UpdateProjectRequest) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Boat != nil {
		project.Boat = *req.Boat
	}
	if req.Spec != nil {
		project.Spec = *req.Spec
	}
	if req.PlannedStart != nil {
		project.PlannedStart = req.PlannedStart
	}
	if req.PlannedEnd != nil {
		project.PlannedEnd = req.PlannedEnd
	}

	project.Version++
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	return project, nil
}

// UpdateStatus moves the project along the workflow. Closing is allowed from
// any non-closed state; every other move must follow the transition table.
func (s *ProjectService) UpdateStatus(ctx context.Context, id, newStatus string) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canTransition(project.Status, newStatus) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", project.Status, newStatus)
	}

	project.Status = newStatus
	if newStatus == entity.ProjectStatusDelivered && project.DeliveredAt == nil {
		now := time.Now()
		project.DeliveredAt = &now
	}
	project.Version++
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}

	return project, nil
}

func (s *ProjectService) canTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == entity.ProjectStatusClosed {
		return from != entity.ProjectStatusClosed
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Delete soft-deletes a project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

// List returns a page of projects.
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*ProjectListResult, error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ProjectListResult{
		Items:      projects,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ============================================================
// Delivery checklist
// ============================================================

// AddDeliveryItem appends a checklist line to the project.
func (s *ProjectService) AddDeliveryItem(ctx context.Context, projectID, label string, sequence int) (*entity.DeliveryItem, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &entity.DeliveryItem{
		ID:        uuid.New().String()[:32],
		ProjectID: projectID,
		Label:     label,
		Sequence:  sequence,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.projectRepo.CreateDeliveryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add delivery item: %w", err)
	}
	return item, nil
}

// ToggleDeliveryItem flips a checklist line done/undone.
func (s *ProjectService) ToggleDeliveryItem(ctx context.Context, id, actor string) (*entity.DeliveryItem, error) {
	item, err := s.projectRepo.FindDeliveryItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Done = !item.Done
	if item.Done {
		now := time.Now()
		item.DoneBy = actor
		item.DoneAt = &now
	} else {
		item.DoneBy = ""
		item.DoneAt = nil
	}
	item.UpdatedAt = time.Now()

	if err := s.projectRepo.UpdateDeliveryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("toggle delivery item: %w", err)
	}
	return item, nil
}

// ListDeliveryItems returns the project's checklist.
func (s *ProjectService) ListDeliveryItems(ctx context.Context, projectID string) ([]entity.DeliveryItem, error) {
	return s.projectRepo.ListDeliveryItems(ctx, projectID)
}

// RemoveDeliveryItem deletes a checklist line; absent ids are a no-op.
func (s *ProjectService) RemoveDeliveryItem(ctx context.Context, id string) error {
	return s.projectRepo.DeleteDeliveryItem(ctx, id)
}
