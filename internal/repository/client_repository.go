package repository

import (
	"context"
	"errors"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// ClientRepository persists werf clients.
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates the client repository.
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByID finds a client by id.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// Update saves a client.
func (r *ClientRepository) Update(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Archive soft-retires a client: status flips to inactive, audit fields are
// set, the row stays. Returns ErrNotFound when the id does not exist.
func (r *ClientRepository) Archive(ctx context.Context, id, actor, reason string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.Client{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":       entity.ClientStatusInactive,
			"archived_by":  actor,
			"archived_at":  now,
			"archive_note": reason,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of clients with optional filters.
func (r *ClientRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{}).Where("deleted_at IS NULL")

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(client_number) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if city, ok := filters["city"].(string); ok && city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("client_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&clients).Error

	return clients, total, err
}

// ListActive returns all clients that have not been archived.
func (r *ClientRepository) ListActive(ctx context.Context) ([]entity.Client, error) {
	var clients []entity.Client
	err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at IS NULL", entity.ClientStatusActive).
		Order("client_number ASC").
		Find(&clients).Error
	return clients, err
}

// CountByStatus counts clients per status.
func (r *ClientRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Client{}).
		Where("status = ? AND deleted_at IS NULL", status).
		Count(&count).Error
	return count, err
}
