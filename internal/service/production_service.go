package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

const summaryCacheTTL = 30 * time.Second

// ProductionService tracks the build stages of a project.
type ProductionService struct {
	prodRepo    *repository.ProductionRepository
	projectRepo *repository.ProjectRepository
	rdb         *redis.Client
	minioClient *minio.Client
	bucketName  string
}

// NewProductionService creates the production service. rdb and minioClient
// may be nil; caching respectively photo storage is then disabled.
func NewProductionService(prodRepo *repository.ProductionRepository, projectRepo *repository.ProjectRepository, rdb *redis.Client, minioClient *minio.Client, bucketName string) *ProductionService {
	return &ProductionService{
		prodRepo:    prodRepo,
		projectRepo: projectRepo,
		rdb:         rdb,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// CreateStageRequest carries a new production stage.
type CreateStageRequest struct {
	Name         string     `json:"name" binding:"required"`
	Sequence     int        `json:"sequence"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
}

// ProductionSummary aggregates a project's stage statuses. IsOnSchedule is
// false as soon as any stage is blocked.
type ProductionSummary struct {
	ProjectID       string           `json:"project_id"`
	TotalStages     int64            `json:"total_stages"`
	ByStatus        map[string]int64 `json:"by_status"`
	OverallProgress int              `json:"overall_progress"`
	IsOnSchedule    bool             `json:"is_on_schedule"`
}

// CreateStage appends a stage to a project.
func (s *ProductionService) CreateStage(ctx context.Context, projectID string, req *CreateStageRequest) (*entity.ProductionStage, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	stage := &entity.ProductionStage{
		ID:           uuid.New().String()[:32],
		ProjectID:    projectID,
		Name:         req.Name,
		Status:       entity.StageStatusNotStarted,
		Sequence:     req.Sequence,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.prodRepo.CreateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("create stage: %w", err)
	}

	s.invalidateSummary(ctx, projectID)
	return stage, nil
}

// GetStage returns a stage with comments and photos.
func (s *ProductionService) GetStage(ctx context.Context, id string) (*entity.ProductionStage, error) {
	return s.prodRepo.FindStageByID(ctx, id)
}

// ListStages returns a project's stages in build order.
func (s *ProductionService) ListStages(ctx context.Context, projectID string) ([]entity.ProductionStage, error) {
	return s.prodRepo.ListStages(ctx, projectID)
}

// DeleteStage removes a stage with its comments and photos.
func (s *ProductionService) DeleteStage(ctx context.Context, id string) error {
	stage, err := s.prodRepo.FindStageByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.prodRepo.DeleteStage(ctx, id); err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	s.invalidateSummary(ctx, stage.ProjectID)
	return nil
}

// Start moves a stage to IN_PROGRESS. Allowed from NOT_STARTED and from
// BLOCKED (unblocking re-starts; elapsed blocked time is not tracked).
// The actual start date is set only the first time.
func (s *ProductionService) Start(ctx context.Context, id string) (*entity.ProductionStage, error) {
	stage, err := s.prodRepo.FindStageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stage.Status != entity.StageStatusNotStarted && stage.Status != entity.StageStatusBlocked {
		return nil, fmt.Errorf("cannot start stage in status %s", stage.Status)
	}

	now := time.Now()
	stage.Status = entity.StageStatusInProgress
	stage.BlockedReason = ""
	if stage.ActualStart == nil {
		stage.ActualStart = &now
	}
	stage.UpdatedAt = now

	if err := s.prodRepo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("start stage: %w", err)
	}
	s.invalidateSummary(ctx, stage.ProjectID)
	return stage, nil
}

// Complete finishes a running stage: progress 100, actual end set.
func (s *ProductionService) Complete(ctx context.Context, id string) (*entity.ProductionStage, error) {
	stage, err := s.prodRepo.FindStageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stage.Status != entity.StageStatusInProgress {
		return nil, fmt.Errorf("cannot complete stage in status %s", stage.Status)
	}

	now := time.Now()
	stage.Status = entity.StageStatusCompleted
	stage.ProgressPercent = 100
	stage.ActualEnd = &now
	stage.UpdatedAt = now

	if err := s.prodRepo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("complete stage: %w", err)
	}
	s.invalidateSummary(ctx, stage.ProjectID)
	return stage, nil
}

// Block halts a running stage. Only the status and reason change; the actual
// start date stays.
func (s *ProductionService) Block(ctx context.Context, id, reason string) (*entity.ProductionStage, error) {
	stage, err := s.prodRepo.FindStageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stage.Status != entity.StageStatusInProgress {
		return nil, fmt.Errorf("cannot block stage in status %s", stage.Status)
	}

	stage.Status = entity.StageStatusBlocked
	stage.BlockedReason = reason
	stage.UpdatedAt = time.Now()

	if err := s.prodRepo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("block stage: %w", err)
	}
	s.invalidateSummary(ctx, stage.ProjectID)
	return stage, nil
}

// SetProgress updates the progress percentage of a running stage.
func (s *ProductionService) SetProgress(ctx context.Context, id string, percent int) (*entity.ProductionStage, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("progress must be between 0 and 100")
	}

	stage, err := s.prodRepo.FindStageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stage.Status != entity.StageStatusInProgress {
		return nil, fmt.Errorf("cannot set progress on stage in status %s", stage.Status)
	}

	stage.ProgressPercent = percent
	stage.UpdatedAt = time.Now()

	if err := s.prodRepo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("set stage progress: %w", err)
	}
	return stage, nil
}

// GetSummary aggregates a project's stage statuses; cached briefly in redis.
func (s *ProductionService) GetSummary(ctx context.Context, projectID string) (*ProductionSummary, error) {
	cacheKey := "production:summary:" + projectID
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var summary ProductionSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	stages, err := s.prodRepo.ListStages(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}

	summary := &ProductionSummary{
		ProjectID:    projectID,
		TotalStages:  int64(len(stages)),
		ByStatus:     map[string]int64{},
		IsOnSchedule: true,
	}
	var progressSum int
	for _, stage := range stages {
		summary.ByStatus[stage.Status]++
		progressSum += stage.ProgressPercent
		if stage.Status == entity.StageStatusBlocked {
			summary.IsOnSchedule = false
		}
	}
	if len(stages) > 0 {
		summary.OverallProgress = progressSum / len(stages)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, cacheKey, data, summaryCacheTTL)
		}
	}

	return summary, nil
}

func (s *ProductionService) invalidateSummary(ctx context.Context, projectID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, "production:summary:"+projectID)
	}
}

// ============================================================
// Comments and photos
// ============================================================

// AddComment appends a shop-floor note to a stage.
func (s *ProductionService) AddComment(ctx context.Context, stageID, authorID, content string) (*entity.StageComment, error) {
	if _, err := s.prodRepo.FindStageByID(ctx, stageID); err != nil {
		return nil, err
	}

	comment := &entity.StageComment{
		ID:        uuid.New().String()[:32],
		StageID:   stageID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.prodRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

// RemoveComment deletes a comment; removing an absent id succeeds silently.
func (s *ProductionService) RemoveComment(ctx context.Context, id string) error {
	return s.prodRepo.DeleteComment(ctx, id)
}

// ListComments returns a stage's comments.
func (s *ProductionService) ListComments(ctx context.Context, stageID string) ([]entity.StageComment, error) {
	return s.prodRepo.ListComments(ctx, stageID)
}

// AddPhoto stores a progress photo and records it on the stage.
func (s *ProductionService) AddPhoto(ctx context.Context, stageID, userID string, reader io.Reader, fileName string, fileSize int64, contentType, caption string) (*entity.StagePhoto, error) {
	if _, err := s.prodRepo.FindStageByID(ctx, stageID); err != nil {
		return nil, err
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("storage not configured")
	}

	objectName := fmt.Sprintf("stages/%s/%s%s", stageID, uuid.New().String()[:8], filepath.Ext(fileName))
	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	photo := &entity.StagePhoto{
		ID:         uuid.New().String()[:32],
		StageID:    stageID,
		FileName:   fileName,
		FilePath:   objectName,
		FileSize:   fileSize,
		MimeType:   contentType,
		Caption:    caption,
		UploadedBy: userID,
		CreatedAt:  time.Now(),
	}
	if err := s.prodRepo.CreatePhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("record photo: %w", err)
	}
	return photo, nil
}

// RemovePhoto deletes a photo record; removing an absent id succeeds silently.
func (s *ProductionService) RemovePhoto(ctx context.Context, id string) error {
	return s.prodRepo.DeletePhoto(ctx, id)
}

// ListPhotos returns a stage's photos.
func (s *ProductionService) ListPhotos(ctx context.Context, stageID string) ([]entity.StagePhoto, error) {
	return s.prodRepo.ListPhotos(ctx, stageID)
}

// DownloadPhoto streams a stored photo.
func (s *ProductionService) DownloadPhoto(ctx context.Context, id string) (io.ReadCloser, *entity.StagePhoto, error) {
	photo, err := s.prodRepo.FindPhotoByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.minioClient == nil {
		return nil, photo, fmt.Errorf("storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, photo.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, photo, nil
}
