package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

type projectFixture struct {
	proj   *ProjectService
	client *entity.Client
}

func setupProjects(t *testing.T) *projectFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	clientSvc := NewClientService(repos.Client, repos.Sequence)
	projectSvc := NewProjectService(repos.Project, repos.Client, repos.Sequence, 0.21)

	client, err := clientSvc.Create(context.Background(), "u1", &CreateClientRequest{Name: "Test Client"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return &projectFixture{proj: projectSvc, client: client}
}

func TestProjectCreateIncludesEquipment(t *testing.T) {
	f := setupProjects(t)
	ctx := context.Background()
	year := time.Now().Year()

	project, err := f.proj.Create(ctx, "u1", &CreateProjectRequest{
		Name:     "Zeester 38",
		ClientID: f.client.ID,
		Boat:     entity.BoatIdentity{BoatName: "Zeester", HIN: "NL-NAV12345A626"},
		Spec:     entity.Specification{LengthM: 11.6, CECategory: "B"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if want := fmt.Sprintf("PRJ-%d-001", year); project.ProjectNumber != want {
		t.Errorf("number = %s, want %s", project.ProjectNumber, want)
	}
	if project.Status != entity.ProjectStatusDraft {
		t.Errorf("status = %s, want draft", project.Status)
	}
	if project.Type != entity.ProjectTypeNewBuild {
		t.Errorf("type = %s, want new_build", project.Type)
	}

	// The equipment aggregate is created in the same transaction.
	reread, err := f.proj.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reread.Equipment == nil {
		t.Fatal("project has no equipment aggregate")
	}
	if reread.Equipment.VatRate != 0.21 {
		t.Errorf("vat rate = %v, want 0.21", reread.Equipment.VatRate)
	}
	if reread.Equipment.Status != entity.EquipmentStatusDraft {
		t.Errorf("equipment status = %s", reread.Equipment.Status)
	}
}

func TestProjectCreateUnknownClient(t *testing.T) {
	f := setupProjects(t)

	_, err := f.proj.Create(context.Background(), "u1", &CreateProjectRequest{
		Name:     "Orphan",
		ClientID: "does-not-exist",
	})
	if err == nil {
		t.Error("creating a project for a missing client should fail")
	}
}

func TestProjectStatusWorkflow(t *testing.T) {
	f := setupProjects(t)
	ctx := context.Background()

	project, err := f.proj.Create(ctx, "u1", &CreateProjectRequest{Name: "Workflow", ClientID: f.client.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// draft cannot jump straight to production.
	if _, err := f.proj.UpdateStatus(ctx, project.ID, entity.ProjectStatusInProduction); err == nil {
		t.Error("draft -> in_production should fail")
	}

	steps := []string{
		entity.ProjectStatusQuoted,
		entity.ProjectStatusConfirmed,
		entity.ProjectStatusInProduction,
		entity.ProjectStatusDelivered,
	}
	for _, status := range steps {
		if _, err := f.proj.UpdateStatus(ctx, project.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	delivered, err := f.proj.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Error("delivery date not stamped")
	}

	// Closing is allowed from delivered; nothing leaves closed.
	if _, err := f.proj.UpdateStatus(ctx, project.ID, entity.ProjectStatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.proj.UpdateStatus(ctx, project.ID, entity.ProjectStatusDraft); err == nil {
		t.Error("reopening a closed project should fail")
	}
}

func TestProjectQuotedFallsBackToDraft(t *testing.T) {
	f := setupProjects(t)
	ctx := context.Background()

	project, err := f.proj.Create(ctx, "u1", &CreateProjectRequest{Name: "Renegotiate", ClientID: f.client.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.proj.UpdateStatus(ctx, project.ID, entity.ProjectStatusQuoted); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := f.proj.UpdateStatus(ctx, project.ID, entity.ProjectStatusDraft); err != nil {
		t.Errorf("quoted -> draft should be allowed: %v", err)
	}
}

func TestDeliveryChecklist(t *testing.T) {
	f := setupProjects(t)
	ctx := context.Background()

	project, err := f.proj.Create(ctx, "u1", &CreateProjectRequest{Name: "Handover", ClientID: f.client.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	item, err := f.proj.AddDeliveryItem(ctx, project.ID, "Sea trial completed", 1)
	if err != nil {
		t.Fatalf("AddDeliveryItem: %v", err)
	}
	if _, err := f.proj.AddDeliveryItem(ctx, project.ID, "Manuals handed over", 2); err != nil {
		t.Fatalf("AddDeliveryItem: %v", err)
	}

	toggled, err := f.proj.ToggleDeliveryItem(ctx, item.ID, "u2")
	if err != nil {
		t.Fatalf("ToggleDeliveryItem: %v", err)
	}
	if !toggled.Done || toggled.DoneBy != "u2" || toggled.DoneAt == nil {
		t.Errorf("toggle on = %+v", toggled)
	}

	untoggled, err := f.proj.ToggleDeliveryItem(ctx, item.ID, "u2")
	if err != nil {
		t.Fatalf("ToggleDeliveryItem off: %v", err)
	}
	if untoggled.Done || untoggled.DoneBy != "" || untoggled.DoneAt != nil {
		t.Errorf("toggle off = %+v", untoggled)
	}

	if err := f.proj.RemoveDeliveryItem(ctx, item.ID); err != nil {
		t.Fatalf("RemoveDeliveryItem: %v", err)
	}
	// Removing an absent id is a no-op.
	if err := f.proj.RemoveDeliveryItem(ctx, item.ID); err != nil {
		t.Errorf("RemoveDeliveryItem absent id: %v", err)
	}

	items, err := f.proj.ListDeliveryItems(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListDeliveryItems: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

func TestProjectSoftDelete(t *testing.T) {
	f := setupProjects(t)
	ctx := context.Background()

	project, err := f.proj.Create(ctx, "u1", &CreateProjectRequest{Name: "Gone", ClientID: f.client.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.proj.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.proj.Get(ctx, project.ID); err == nil {
		t.Error("deleted project should not be found")
	}

	result, err := f.proj.List(ctx, 1, 20, map[string]interface{}{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("deleted project still listed: total=%d", result.Total)
	}
}
