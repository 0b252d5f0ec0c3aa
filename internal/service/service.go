package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/repository"
)

// Services bundles all services for dependency wiring.
type Services struct {
	Auth       *AuthService
	Client     *ClientService
	Project    *ProjectService
	Equipment  *EquipmentService
	Document   *DocumentService
	Production *ProductionService
	Planning   *PlanningService
	Export     *ExportService
	Dashboard  *DashboardService
}

// NewServices creates the service set. Redis and MinIO are optional
// collaborators: a nil client disables caching respectively file storage.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// Continue without object storage; uploads will be rejected.
			minioClient = nil
		}
	}

	renderer := NewQuotationRenderer(cfg.Company, cfg.PDF.BinaryPath)
	exportSvc := NewExportService(cfg.Company)

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg.JWT),
		Client:     NewClientService(repos.Client, repos.Sequence),
		Project:    NewProjectService(repos.Project, repos.Client, repos.Sequence, cfg.Company.DefaultVAT),
		Equipment:  NewEquipmentService(repos.Equipment, repos.Project),
		Document:   NewDocumentService(repos.Document, repos.Project, repos.Equipment, repos.Sequence, renderer, exportSvc, minioClient, cfg.MinIO.Bucket),
		Production: NewProductionService(repos.Production, repos.Project, rdb, minioClient, cfg.MinIO.Bucket),
		Planning:   NewPlanningService(repos.Planning, repos.Project),
		Export:     exportSvc,
		Dashboard:  NewDashboardService(repos.Client, repos.Project, repos.Production, repos.Planning, rdb),
	}
}
