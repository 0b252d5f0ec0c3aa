package repository

import (
	"context"
	"errors"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// ProductionRepository persists production stages with their comments and photos.
type ProductionRepository struct {
	db *gorm.DB
}

// NewProductionRepository creates the production repository.
func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

// FindStageByID loads a stage with comments and photos.
func (r *ProductionRepository) FindStageByID(ctx context.Context, id string) (*entity.ProductionStage, error) {
	var stage entity.ProductionStage
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// CreateStage inserts a stage.
func (r *ProductionRepository) CreateStage(ctx context.Context, stage *entity.ProductionStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

// UpdateStage saves a stage.
func (r *ProductionRepository) UpdateStage(ctx context.Context, stage *entity.ProductionStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// DeleteStage removes a stage and its owned comments and photos.
func (r *ProductionRepository) DeleteStage(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.StageComment{}, "stage_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.StagePhoto{}, "stage_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.ProductionStage{}, "id = ?", id).Error
	})
}

// ListStages returns a project's stages in build order.
func (r *ProductionRepository) ListStages(ctx context.Context, projectID string) ([]entity.ProductionStage, error) {
	var stages []entity.ProductionStage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sequence ASC").
		Find(&stages).Error
	return stages, err
}

// CountStagesByStatus counts a project's stages per status.
func (r *ProductionRepository) CountStagesByStatus(ctx context.Context, projectID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.ProductionStage{}).
		Select("status, COUNT(*) AS count").
		Where("project_id = ?", projectID).
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

// CountBlocked counts blocked stages across all projects.
func (r *ProductionRepository) CountBlocked(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductionStage{}).
		Where("status = ?", entity.StageStatusBlocked).
		Count(&count).Error
	return count, err
}

// ============================================================
// Comments and photos
// ============================================================

// CreateComment appends a comment to a stage.
func (r *ProductionRepository) CreateComment(ctx context.Context, comment *entity.StageComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// DeleteComment removes a comment; deleting an absent id is a no-op.
func (r *ProductionRepository) DeleteComment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.StageComment{}, "id = ?", id).Error
}

// ListComments returns a stage's comments, oldest first.
func (r *ProductionRepository) ListComments(ctx context.Context, stageID string) ([]entity.StageComment, error) {
	var comments []entity.StageComment
	err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Preload("Author").
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// CreatePhoto appends a photo record to a stage.
func (r *ProductionRepository) CreatePhoto(ctx context.Context, photo *entity.StagePhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// FindPhotoByID loads one photo record.
func (r *ProductionRepository) FindPhotoByID(ctx context.Context, id string) (*entity.StagePhoto, error) {
	var photo entity.StagePhoto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto removes a photo record; deleting an absent id is a no-op.
func (r *ProductionRepository) DeletePhoto(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.StagePhoto{}, "id = ?", id).Error
}

// ListPhotos returns a stage's photos, oldest first.
func (r *ProductionRepository) ListPhotos(ctx context.Context, stageID string) ([]entity.StagePhoto, error) {
	var photos []entity.StagePhoto
	err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("created_at ASC").
		Find(&photos).Error
	return photos, err
}
