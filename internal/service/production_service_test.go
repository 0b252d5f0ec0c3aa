package service

import (
	"context"
	"testing"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

type productionFixture struct {
	prod    *ProductionService
	project *entity.Project
}

func setupProduction(t *testing.T) *productionFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	clientSvc := NewClientService(repos.Client, repos.Sequence)
	projectSvc := NewProjectService(repos.Project, repos.Client, repos.Sequence, 0.21)
	prodSvc := NewProductionService(repos.Production, repos.Project, nil, nil, "")

	ctx := context.Background()
	client, err := clientSvc.Create(ctx, "u1", &CreateClientRequest{Name: "Test Client"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	project, err := projectSvc.Create(ctx, "u1", &CreateProjectRequest{Name: "Test Build", ClientID: client.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	return &productionFixture{prod: prodSvc, project: project}
}

func (f *productionFixture) stage(t *testing.T, name string) *entity.ProductionStage {
	t.Helper()
	stage, err := f.prod.CreateStage(context.Background(), f.project.ID, &CreateStageRequest{Name: name})
	if err != nil {
		t.Fatalf("create stage %s: %v", name, err)
	}
	return stage
}

func TestStageLifecycle(t *testing.T) {
	f := setupProduction(t)
	ctx := context.Background()

	stage := f.stage(t, "Hull lamination")
	if stage.Status != entity.StageStatusNotStarted {
		t.Fatalf("new stage status = %s", stage.Status)
	}

	started, err := f.prod.Start(ctx, stage.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != entity.StageStatusInProgress || started.ActualStart == nil {
		t.Errorf("after start: status=%s actualStart=%v", started.Status, started.ActualStart)
	}

	completed, err := f.prod.Complete(ctx, stage.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.ProgressPercent != 100 || completed.ActualEnd == nil {
		t.Errorf("after complete: progress=%d actualEnd=%v", completed.ProgressPercent, completed.ActualEnd)
	}

	// A completed stage cannot be started or completed again.
	if _, err := f.prod.Start(ctx, stage.ID); err == nil {
		t.Error("starting a completed stage should fail")
	}
	if _, err := f.prod.Complete(ctx, stage.ID); err == nil {
		t.Error("completing a completed stage should fail")
	}
}

func TestStageBlockAndUnblock(t *testing.T) {
	f := setupProduction(t)
	ctx := context.Background()

	stage := f.stage(t, "Interior")
	if _, err := f.prod.Block(ctx, stage.ID, "parts missing"); err == nil {
		t.Error("blocking a not-started stage should fail")
	}

	started, err := f.prod.Start(ctx, stage.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	firstStart := started.ActualStart

	blocked, err := f.prod.Block(ctx, stage.ID, "parts missing")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if blocked.BlockedReason != "parts missing" {
		t.Errorf("blocked reason = %q", blocked.BlockedReason)
	}
	if blocked.ActualStart == nil {
		t.Error("blocking must not clear the actual start")
	}

	// Restarting from BLOCKED clears the reason and keeps the original start.
	restarted, err := f.prod.Start(ctx, stage.ID)
	if err != nil {
		t.Fatalf("Start from blocked: %v", err)
	}
	if restarted.BlockedReason != "" {
		t.Errorf("reason survived restart: %q", restarted.BlockedReason)
	}
	if restarted.ActualStart == nil || !restarted.ActualStart.Equal(*firstStart) {
		t.Errorf("actual start changed: %v -> %v", firstStart, restarted.ActualStart)
	}
}

func TestStageProgressBounds(t *testing.T) {
	f := setupProduction(t)
	ctx := context.Background()

	stage := f.stage(t, "Paint")
	if _, err := f.prod.SetProgress(ctx, stage.ID, 50); err == nil {
		t.Error("progress on a not-started stage should fail")
	}

	if _, err := f.prod.Start(ctx, stage.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	updated, err := f.prod.SetProgress(ctx, stage.ID, 60)
	if err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if updated.ProgressPercent != 60 {
		t.Errorf("progress = %d", updated.ProgressPercent)
	}

	if _, err := f.prod.SetProgress(ctx, stage.ID, 101); err == nil {
		t.Error("progress above 100 should fail")
	}
	if _, err := f.prod.SetProgress(ctx, stage.ID, -1); err == nil {
		t.Error("negative progress should fail")
	}
}

func TestProductionSummary(t *testing.T) {
	f := setupProduction(t)
	ctx := context.Background()

	a := f.stage(t, "Hull")
	b := f.stage(t, "Deck")
	f.stage(t, "Rigging")

	if _, err := f.prod.Start(ctx, a.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.prod.Complete(ctx, a.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := f.prod.Start(ctx, b.ID); err != nil {
		t.Fatalf("Start b: %v", err)
	}
	if _, err := f.prod.SetProgress(ctx, b.ID, 50); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	summary, err := f.prod.GetSummary(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.TotalStages != 3 {
		t.Errorf("total = %d", summary.TotalStages)
	}
	if summary.OverallProgress != 50 { // (100+50+0)/3
		t.Errorf("overall progress = %d, want 50", summary.OverallProgress)
	}
	if !summary.IsOnSchedule {
		t.Error("no blocked stages, should be on schedule")
	}

	if _, err := f.prod.Block(ctx, b.ID, "waiting on mast"); err != nil {
		t.Fatalf("Block: %v", err)
	}
	summary, err = f.prod.GetSummary(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.IsOnSchedule {
		t.Error("blocked stage should flip IsOnSchedule")
	}
	if summary.ByStatus[entity.StageStatusBlocked] != 1 {
		t.Errorf("blocked count = %d", summary.ByStatus[entity.StageStatusBlocked])
	}
}

func TestStageCommentsAndCascadeDelete(t *testing.T) {
	f := setupProduction(t)
	ctx := context.Background()

	stage := f.stage(t, "Hull")
	if _, err := f.prod.AddComment(ctx, stage.ID, "u1", "gelcoat cured"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	// Removing an absent comment is a no-op, not an error.
	if err := f.prod.RemoveComment(ctx, "does-not-exist"); err != nil {
		t.Errorf("RemoveComment absent id: %v", err)
	}

	if err := f.prod.DeleteStage(ctx, stage.ID); err != nil {
		t.Fatalf("DeleteStage: %v", err)
	}
	comments, err := f.prod.ListComments(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived stage delete: %d", len(comments))
	}
}
