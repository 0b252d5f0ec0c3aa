package service

import (
	"context"
	"testing"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

type planningFixture struct {
	plan    *PlanningService
	proj    *ProjectService
	project *entity.Project
}

func setupPlanning(t *testing.T) *planningFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	clientSvc := NewClientService(repos.Client, repos.Sequence)
	projectSvc := NewProjectService(repos.Project, repos.Client, repos.Sequence, 0.21)
	planSvc := NewPlanningService(repos.Planning, repos.Project)

	ctx := context.Background()
	client, err := clientSvc.Create(ctx, "u1", &CreateClientRequest{Name: "Test Client"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	project, err := projectSvc.Create(ctx, "u1", &CreateProjectRequest{Name: "Test Build", ClientID: client.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	return &planningFixture{plan: planSvc, proj: projectSvc, project: project}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func (f *planningFixture) task(t *testing.T, name string, start, end *time.Time) *entity.PlanningTask {
	t.Helper()
	task, err := f.plan.CreateTask(context.Background(), f.project.ID, &CreateTaskRequest{
		Name:         name,
		PlannedStart: start,
		PlannedEnd:   end,
	})
	if err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return task
}

func TestShiftTaskMovesBothDates(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	task := f.task(t, "Hull", datePtr(2026, 3, 2), datePtr(2026, 3, 13))

	shifted, err := f.plan.ShiftTask(ctx, task.ID, 7)
	if err != nil {
		t.Fatalf("ShiftTask: %v", err)
	}
	if !shifted.PlannedStart.Equal(*datePtr(2026, 3, 9)) {
		t.Errorf("start = %v", shifted.PlannedStart)
	}
	if !shifted.PlannedEnd.Equal(*datePtr(2026, 3, 20)) {
		t.Errorf("end = %v", shifted.PlannedEnd)
	}

	// Negative deltas move backwards.
	shifted, err = f.plan.ShiftTask(ctx, task.ID, -7)
	if err != nil {
		t.Fatalf("ShiftTask back: %v", err)
	}
	if !shifted.PlannedStart.Equal(*datePtr(2026, 3, 2)) {
		t.Errorf("start after shift back = %v", shifted.PlannedStart)
	}
}

func TestShiftTaskZeroDeltaWritesNothing(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	task := f.task(t, "Hull", datePtr(2026, 3, 2), datePtr(2026, 3, 13))
	before := task.UpdatedAt

	shifted, err := f.plan.ShiftTask(ctx, task.ID, 0)
	if err != nil {
		t.Fatalf("ShiftTask: %v", err)
	}
	if !shifted.UpdatedAt.Equal(before) {
		t.Error("zero-day shift should not rewrite the task")
	}
}

func TestResizeTaskClampsToStart(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	task := f.task(t, "Deck", datePtr(2026, 4, 6), datePtr(2026, 4, 10))

	resized, err := f.plan.ResizeTask(ctx, task.ID, 5)
	if err != nil {
		t.Fatalf("ResizeTask: %v", err)
	}
	if !resized.PlannedEnd.Equal(*datePtr(2026, 4, 15)) {
		t.Errorf("end = %v", resized.PlannedEnd)
	}
	if !resized.PlannedStart.Equal(*datePtr(2026, 4, 6)) {
		t.Errorf("resize moved the start: %v", resized.PlannedStart)
	}

	// Shrinking past the start clamps to the start.
	resized, err = f.plan.ResizeTask(ctx, task.ID, -30)
	if err != nil {
		t.Fatalf("ResizeTask shrink: %v", err)
	}
	if !resized.PlannedEnd.Equal(*datePtr(2026, 4, 6)) {
		t.Errorf("end not clamped: %v", resized.PlannedEnd)
	}
}

func TestTaskStatusValidation(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	task := f.task(t, "Rigging", nil, nil)

	updated, err := f.plan.SetTaskStatus(ctx, task.ID, entity.PlanningTaskStatusDone)
	if err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}
	if updated.Status != entity.PlanningTaskStatusDone {
		t.Errorf("status = %s", updated.Status)
	}

	if _, err := f.plan.SetTaskStatus(ctx, task.ID, "SHIPPED"); err == nil {
		t.Error("unknown status should fail")
	}
}

func TestDependencyRules(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	a := f.task(t, "Hull", nil, nil)
	b := f.task(t, "Deck", nil, nil)

	if _, err := f.plan.AddDependency(ctx, a.ID, a.ID); err == nil {
		t.Error("self-dependency should fail")
	}

	dep, err := f.plan.AddDependency(ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if _, err := f.plan.AddDependency(ctx, b.ID, a.ID); err == nil {
		t.Error("duplicate dependency should fail")
	}

	if err := f.plan.RemoveDependency(ctx, dep.ID); err != nil {
		t.Fatalf("RemoveDependency: %v", err)
	}
	// Removing again is a no-op.
	if err := f.plan.RemoveDependency(ctx, dep.ID); err != nil {
		t.Errorf("RemoveDependency absent id: %v", err)
	}
}

func TestDeleteTaskScrubsDependencies(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	a := f.task(t, "Hull", nil, nil)
	b := f.task(t, "Deck", nil, nil)
	if _, err := f.plan.AddDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	if err := f.plan.DeleteTask(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	remaining, err := f.plan.GetTask(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(remaining.Dependencies) != 0 {
		t.Errorf("dependency on a deleted task survived: %d", len(remaining.Dependencies))
	}
}

func TestDeleteResourceClearsAssignments(t *testing.T) {
	f := setupPlanning(t)
	ctx := context.Background()

	res, err := f.plan.CreateResource(ctx, f.project.ID, "Jan", "person")
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	task, err := f.plan.CreateTask(ctx, f.project.ID, &CreateTaskRequest{
		Name:       "Varnish",
		ResourceID: res.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := f.plan.DeleteResource(ctx, res.ID); err != nil {
		t.Fatalf("DeleteResource: %v", err)
	}

	reread, err := f.plan.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if reread.ResourceID != "" {
		t.Errorf("assignment survived resource delete: %q", reread.ResourceID)
	}
}

func TestCreateTaskRejectsInvertedDates(t *testing.T) {
	f := setupPlanning(t)

	_, err := f.plan.CreateTask(context.Background(), f.project.ID, &CreateTaskRequest{
		Name:         "Backwards",
		PlannedStart: datePtr(2026, 5, 10),
		PlannedEnd:   datePtr(2026, 5, 1),
	})
	if err == nil {
		t.Error("end before start should fail")
	}
}
