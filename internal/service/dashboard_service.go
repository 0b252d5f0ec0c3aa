package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

const dashboardCacheKey = "dashboard:overview"
const dashboardCacheTTL = 60 * time.Second

// DashboardOverview is the landing-page aggregate across all projects.
type DashboardOverview struct {
	ActiveClients    int64            `json:"active_clients"`
	ProjectsByStatus map[string]int64 `json:"projects_by_status"`
	ProjectsTotal    int64            `json:"projects_total"`
	BlockedStages    int64            `json:"blocked_stages"`
	OpenTasks        int64            `json:"open_tasks"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// DashboardService aggregates counters for the overview screen.
type DashboardService struct {
	clientRepo  *repository.ClientRepository
	projectRepo *repository.ProjectRepository
	prodRepo    *repository.ProductionRepository
	planRepo    *repository.PlanningRepository
	rdb         *redis.Client
}

// NewDashboardService creates the dashboard service. rdb may be nil.
func NewDashboardService(clientRepo *repository.ClientRepository, projectRepo *repository.ProjectRepository, prodRepo *repository.ProductionRepository, planRepo *repository.PlanningRepository, rdb *redis.Client) *DashboardService {
	return &DashboardService{
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		prodRepo:    prodRepo,
		planRepo:    planRepo,
		rdb:         rdb,
	}
}

// GetOverview builds the dashboard counters; cached briefly in redis since
// every user lands here.
func (s *DashboardService) GetOverview(ctx context.Context) (*DashboardOverview, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var overview DashboardOverview
			if json.Unmarshal([]byte(cached), &overview) == nil {
				return &overview, nil
			}
		}
	}

	activeClients, err := s.clientRepo.CountByStatus(ctx, entity.ClientStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	byStatus, err := s.projectRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	blocked, err := s.prodRepo.CountBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("count blocked stages: %w", err)
	}
	openTasks, err := s.planRepo.CountOpenTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count open tasks: %w", err)
	}

	overview := &DashboardOverview{
		ActiveClients:    activeClients,
		ProjectsByStatus: byStatus,
		BlockedStages:    blocked,
		OpenTasks:        openTasks,
		GeneratedAt:      time.Now(),
	}
	for _, n := range byStatus {
		overview.ProjectsTotal += n
	}

	if s.rdb != nil {
		if data, err := json.Marshal(overview); err == nil {
			s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL)
		}
	}

	return overview, nil
}
