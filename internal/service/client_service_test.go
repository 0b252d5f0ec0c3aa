package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

func setupClientService(t *testing.T) *ClientService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewClientService(repos.Client, repos.Sequence)
}

func TestClientCreateAllocatesSequentialNumbers(t *testing.T) {
	svc := setupClientService(t)
	ctx := context.Background()
	year := time.Now().Year()

	for i := 1; i <= 3; i++ {
		client, err := svc.Create(ctx, "u1", &CreateClientRequest{Name: fmt.Sprintf("Client %d", i)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want := fmt.Sprintf("CLI-%d-%04d", year, i)
		if client.ClientNumber != want {
			t.Errorf("client %d: number = %s, want %s", i, client.ClientNumber, want)
		}
		if client.Version != 1 {
			t.Errorf("client %d: version = %d, want 1", i, client.Version)
		}
	}
}

func TestClientUpdateMergesAndBumpsVersion(t *testing.T) {
	svc := setupClientService(t)
	ctx := context.Background()

	client, err := svc.Create(ctx, "u1", &CreateClientRequest{
		Name:  "Jansen Watersport",
		Email: "info@jansen.example",
		City:  "Sneek",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, client.ID, &UpdateClientRequest{Phone: "+31 515 000 111"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone != "+31 515 000 111" {
		t.Errorf("phone = %s", updated.Phone)
	}
	if updated.Email != "info@jansen.example" || updated.City != "Sneek" {
		t.Errorf("untouched fields changed: email=%s city=%s", updated.Email, updated.City)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
}

func TestClientArchiveKeepsRecord(t *testing.T) {
	svc := setupClientService(t)
	ctx := context.Background()

	client, err := svc.Create(ctx, "u1", &CreateClientRequest{Name: "De Boer Yachting"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Archive(ctx, client.ID, "u2", "moved abroad"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	archived, err := svc.Get(ctx, client.ID)
	if err != nil {
		t.Fatalf("Get after archive: %v", err)
	}
	if archived.Status != "inactive" {
		t.Errorf("status = %s, want inactive", archived.Status)
	}
	if archived.ArchivedBy != "u2" || archived.ArchivedAt == nil {
		t.Errorf("archive metadata missing: by=%s at=%v", archived.ArchivedBy, archived.ArchivedAt)
	}
	if archived.ArchiveNote != "moved abroad" {
		t.Errorf("archive note = %q", archived.ArchiveNote)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	for _, c := range active {
		if c.ID == client.ID {
			t.Error("archived client still listed as active")
		}
	}
}

func TestClientArchiveMissingID(t *testing.T) {
	svc := setupClientService(t)

	err := svc.Archive(context.Background(), "nope", "u1", "")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClientListKeywordSearch(t *testing.T) {
	svc := setupClientService(t)
	ctx := context.Background()

	names := []string{"Jansen Watersport", "De Vries Marine", "Bakker Boten"}
	for _, name := range names {
		if _, err := svc.Create(ctx, "u1", &CreateClientRequest{Name: name}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	result, err := svc.List(ctx, 1, 20, map[string]interface{}{"keyword": "vries"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if !strings.Contains(result.Items[0].Name, "Vries") {
		t.Errorf("matched %s", result.Items[0].Name)
	}
}

func TestClientListPagination(t *testing.T) {
	svc := setupClientService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "u1", &CreateClientRequest{Name: fmt.Sprintf("Client %02d", i)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := svc.List(ctx, 2, 2, map[string]interface{}{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 5 || len(result.Items) != 2 || result.TotalPages != 3 {
		t.Errorf("total=%d items=%d pages=%d, want 5/2/3", result.Total, len(result.Items), result.TotalPages)
	}
}
