package repository

import (
	"context"
	"errors"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// ProjectRepository persists projects and their delivery checklists.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates the project repository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID finds a project with its client and equipment preloaded.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Equipment").
		Preload("Equipment.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// CreateWithEquipment inserts a project and its empty equipment aggregate in
// one transaction, so a project can never exist without its configuration.
func (r *ProjectRepository) CreateWithEquipment(ctx context.Context, project *entity.Project, equipment *entity.Equipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		equipment.ProjectID = project.ID
		return tx.Create(equipment).Error
	})
}

// Update saves a project.
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete soft-deletes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of projects with optional filters.
func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Project, int64, error) {
	var projects []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{}).Where("deleted_at IS NULL")

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(project_number) LIKE LOWER(?) OR LOWER(boat_name) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if clientID, ok := filters["client_id"].(string); ok && clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if projectType, ok := filters["type"].(string); ok && projectType != "" {
		query = query.Where("type = ?", projectType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Client").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&projects).Error

	return projects, total, err
}

// CountByStatus counts live projects per status.
func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Select("status, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// ============================================================
// Delivery checklist
// ============================================================

// ListDeliveryItems returns the delivery checklist of a project.
func (r *ProjectRepository) ListDeliveryItems(ctx context.Context, projectID string) ([]entity.DeliveryItem, error) {
	var items []entity.DeliveryItem
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sequence ASC").
		Find(&items).Error
	return items, err
}

// CreateDeliveryItem appends a checklist line.
func (r *ProjectRepository) CreateDeliveryItem(ctx context.Context, item *entity.DeliveryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateDeliveryItem saves a checklist line.
func (r *ProjectRepository) UpdateDeliveryItem(ctx context.Context, item *entity.DeliveryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindDeliveryItem finds one checklist line.
func (r *ProjectRepository) FindDeliveryItem(ctx context.Context, id string) (*entity.DeliveryItem, error) {
	var item entity.DeliveryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// DeleteDeliveryItem removes a checklist line; deleting an absent id is a no-op.
func (r *ProjectRepository) DeleteDeliveryItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.DeliveryItem{}, "id = ?", id).Error
}
