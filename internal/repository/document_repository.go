package repository

import (
	"context"
	"errors"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// DocumentRepository persists project documents. Documents are append-only:
// there is no delete, and updates only move status and file metadata.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates the document repository.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID finds a document by id.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.ProjectDocument, error) {
	var doc entity.ProjectDocument
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Create inserts a document.
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.ProjectDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// Update saves a document.
func (r *DocumentRepository) Update(ctx context.Context, doc *entity.ProjectDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// ListByProject returns a project's documents, newest version first,
// optionally filtered by type.
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID, docType string) ([]entity.ProjectDocument, error) {
	var docs []entity.ProjectDocument
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if docType != "" {
		query = query.Where("type = ?", docType)
	}
	err := query.Order("type ASC, version DESC").Find(&docs).Error
	return docs, err
}

// CountByType counts a project's documents of one type. The next version
// number is this count plus one.
func (r *DocumentRepository) CountByType(ctx context.Context, projectID, docType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProjectDocument{}).
		Where("project_id = ? AND type = ?", projectID, docType).
		Count(&count).Error
	return count, err
}

// LatestByType returns the highest-version document of a type, or ErrNotFound.
func (r *DocumentRepository) LatestByType(ctx context.Context, projectID, docType string) (*entity.ProjectDocument, error) {
	var doc entity.ProjectDocument
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND type = ?", projectID, docType).
		Order("version DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// SupersedeFinals flips every FINAL document of the type to SUPERSEDED,
// except the given id. Used when a newer document of the type goes FINAL.
func (r *DocumentRepository) SupersedeFinals(ctx context.Context, projectID, docType, exceptID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.ProjectDocument{}).
		Where("project_id = ? AND type = ? AND status = ? AND id <> ?",
			projectID, docType, entity.DocumentStatusFinal, exceptID).
		Updates(map[string]interface{}{
			"status":     entity.DocumentStatusSuperseded,
			"updated_at": time.Now(),
		}).Error
}
