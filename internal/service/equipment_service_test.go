package service

import (
	"context"
	"strings"
	"testing"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/testutil"
)

type equipmentFixture struct {
	eq      *EquipmentService
	proj    *ProjectService
	project *entity.Project
}

func setupEquipment(t *testing.T) *equipmentFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	clientSvc := NewClientService(repos.Client, repos.Sequence)
	projectSvc := NewProjectService(repos.Project, repos.Client, repos.Sequence, 0.21)
	eqSvc := NewEquipmentService(repos.Equipment, repos.Project)

	ctx := context.Background()
	client, err := clientSvc.Create(ctx, "u1", &CreateClientRequest{Name: "Test Client"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	project, err := projectSvc.Create(ctx, "u1", &CreateProjectRequest{
		Name:     "Test Build",
		ClientID: client.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	return &equipmentFixture{eq: eqSvc, proj: projectSvc, project: project}
}

func (f *equipmentFixture) addItem(t *testing.T, name string, price float64) *entity.EquipmentItem {
	t.Helper()
	item, err := f.eq.AddItem(context.Background(), f.project.ID, &AddItemRequest{
		Category:         "navigation",
		Name:             name,
		Quantity:         1,
		UnitPriceExclVat: price,
	})
	if err != nil {
		t.Fatalf("add item %s: %v", name, err)
	}
	return item
}

func TestEquipmentTotalsRecomputedOnEveryWrite(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	f.addItem(t, "Radar", 100)
	f.addItem(t, "Chartplotter", 200)
	f.addItem(t, "VHF", 300)

	eq, err := f.eq.Get(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if eq.SubtotalExclVat != 600 {
		t.Errorf("subtotal = %v, want 600", eq.SubtotalExclVat)
	}
	if eq.VatAmount != 126 {
		t.Errorf("vat = %v, want 126", eq.VatAmount)
	}
	if eq.TotalInclVat != 726 {
		t.Errorf("total = %v, want 726", eq.TotalInclVat)
	}
}

func TestEquipmentExcludedItemsLeaveTotals(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	f.addItem(t, "Radar", 100)
	excluded := f.addItem(t, "Chartplotter", 200)
	f.addItem(t, "VHF", 300)

	no := false
	if _, err := f.eq.UpdateItem(ctx, excluded.ID, &UpdateItemRequest{IsIncluded: &no}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	eq, err := f.eq.Get(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if eq.SubtotalExclVat != 400 || eq.VatAmount != 84 || eq.TotalInclVat != 484 {
		t.Errorf("totals = %v/%v/%v, want 400/84/484",
			eq.SubtotalExclVat, eq.VatAmount, eq.TotalInclVat)
	}

	// The line itself keeps its amount even when excluded.
	items := eq.Items
	for _, it := range items {
		if it.ID == excluded.ID && it.LineTotal != 200 {
			t.Errorf("excluded line total = %v, want 200", it.LineTotal)
		}
	}
}

func TestEquipmentQuantityTimesPrice(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	item, err := f.eq.AddItem(ctx, f.project.ID, &AddItemRequest{
		Category:         "rigging",
		Name:             "Winch",
		Quantity:         4,
		UnitPriceExclVat: 149.95,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.LineTotal != 599.80 {
		t.Errorf("line total = %v, want 599.80", item.LineTotal)
	}
}

func TestEquipmentRemoveItemUpdatesTotals(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	f.addItem(t, "Radar", 100)
	victim := f.addItem(t, "Chartplotter", 200)

	if err := f.eq.RemoveItem(ctx, victim.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	eq, err := f.eq.Get(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(eq.Items) != 1 || eq.SubtotalExclVat != 100 {
		t.Errorf("items=%d subtotal=%v, want 1/100", len(eq.Items), eq.SubtotalExclVat)
	}
}

func TestEquipmentSetVatRate(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	f.addItem(t, "Radar", 1000)

	eq, err := f.eq.SetVatRate(ctx, f.project.ID, 0.09)
	if err != nil {
		t.Fatalf("SetVatRate: %v", err)
	}
	if eq.VatAmount != 90 || eq.TotalInclVat != 1090 {
		t.Errorf("vat=%v total=%v, want 90/1090", eq.VatAmount, eq.TotalInclVat)
	}

	if _, err := f.eq.SetVatRate(ctx, f.project.ID, 1.5); err == nil {
		t.Error("expected error for rate > 1")
	}
}

func TestEquipmentFrozenRejectsMutations(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	item := f.addItem(t, "Radar", 100)

	if _, err := f.eq.Freeze(ctx, f.project.ID, "u1"); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if _, err := f.eq.AddItem(ctx, f.project.ID, &AddItemRequest{Category: "x", Name: "y"}); err == nil {
		t.Error("AddItem on frozen equipment should fail")
	} else if !strings.Contains(err.Error(), "frozen") {
		t.Errorf("unexpected error: %v", err)
	}
	name := "Renamed"
	if _, err := f.eq.UpdateItem(ctx, item.ID, &UpdateItemRequest{Name: &name}); err == nil {
		t.Error("UpdateItem on frozen equipment should fail")
	}
	if err := f.eq.RemoveItem(ctx, item.ID); err == nil {
		t.Error("RemoveItem on frozen equipment should fail")
	}
	if _, err := f.eq.SetVatRate(ctx, f.project.ID, 0.09); err == nil {
		t.Error("SetVatRate on frozen equipment should fail")
	}

	// Unfreezing reopens the aggregate.
	if _, err := f.eq.Unfreeze(ctx, f.project.ID); err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	if _, err := f.eq.AddItem(ctx, f.project.ID, &AddItemRequest{Category: "x", Name: "y"}); err != nil {
		t.Errorf("AddItem after unfreeze: %v", err)
	}
}

func TestEquipmentReplaceItems(t *testing.T) {
	f := setupEquipment(t)
	ctx := context.Background()

	f.addItem(t, "Old Radar", 100)

	eq, err := f.eq.ReplaceItems(ctx, f.project.ID, []AddItemRequest{
		{Category: "navigation", Name: "New Radar", Quantity: 1, UnitPriceExclVat: 250},
		{Category: "safety", Name: "Life raft", Quantity: 2, UnitPriceExclVat: 500},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if len(eq.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(eq.Items))
	}
	if eq.SubtotalExclVat != 1250 {
		t.Errorf("subtotal = %v, want 1250", eq.SubtotalExclVat)
	}
	if eq.Items[0].SortOrder != 0 || eq.Items[1].SortOrder != 1 {
		t.Errorf("sort order not assigned: %d/%d", eq.Items[0].SortOrder, eq.Items[1].SortOrder)
	}
}
