package service

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/model/entity"
)

func newExport() *ExportService {
	return NewExportService(config.CompanyConfig{Brand: "NaviSol"})
}

func TestParseItemsCSVCommaDelimited(t *testing.T) {
	csv := `category,name,quantity,unit,unit_price_excl_vat,is_included,notes
navigation,Radar,1,pcs,1250.00,true,mast mounted
safety,Life raft,2,pcs,499.50,false,
`
	items, err := newExport().ParseItemsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseItemsCSV: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "Radar" || items[0].UnitPriceExclVat != 1250 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Quantity != 2 {
		t.Errorf("item 1 quantity = %v", items[1].Quantity)
	}
	if items[0].IsIncluded == nil || !*items[0].IsIncluded {
		t.Error("item 0 should be included")
	}
	if items[1].IsIncluded == nil || *items[1].IsIncluded {
		t.Error("item 1 should be excluded")
	}
}

func TestParseItemsCSVSemicolonAndDutchHeaders(t *testing.T) {
	// Excel NL saves semicolon-delimited with Dutch headers and decimal commas.
	csv := `Categorie;Omschrijving;Aantal;Eenheid;Stukprijs
elektra;Boegschroef;1;stk;2.499,95
tuigage;Vallen;4;m;12,50
`
	items, err := newExport().ParseItemsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseItemsCSV: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "Boegschroef" || items[0].UnitPriceExclVat != 2499.95 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Quantity != 4 || items[1].UnitPriceExclVat != 12.50 {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestParseItemsCSVWindows1252(t *testing.T) {
	// "Caf\xe9" is é in Windows-1252 and invalid UTF-8.
	encoder := charmap.Windows1252.NewEncoder()
	line, err := encoder.String("name,notes\nInterieur café,zithoek\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	items, err := newExport().ParseItemsCSV(bytes.NewReader([]byte(line)))
	if err != nil {
		t.Fatalf("ParseItemsCSV: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Name != "Interieur café" {
		t.Errorf("name = %q", items[0].Name)
	}
}

func TestParseItemsCSVSkipsBlankAndNamelessRows(t *testing.T) {
	csv := `name,quantity
Radar,1

,3
Compass,2
`
	items, err := newExport().ParseItemsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseItemsCSV: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
}

func TestParseItemsCSVRejectsUnknownLayout(t *testing.T) {
	if _, err := newExport().ParseItemsCSV(strings.NewReader("foo,bar\n1,2\n")); err == nil {
		t.Error("csv without a name column should fail")
	}
	if _, err := newExport().ParseItemsCSV(strings.NewReader("name\n")); err == nil {
		t.Error("csv without items should fail")
	}
}

func TestExportItemsCSVRoundTrips(t *testing.T) {
	svc := newExport()
	eq := &entity.Equipment{
		Items: []entity.EquipmentItem{
			{Category: "navigation", Name: "Radar", Quantity: 1, Unit: "pcs", UnitPriceExclVat: 1250, IsIncluded: true},
			{Category: "safety", Name: "Life raft", Quantity: 2, Unit: "pcs", UnitPriceExclVat: 499.50, IsIncluded: false},
		},
	}

	data, err := svc.ExportItemsCSV(eq)
	if err != nil {
		t.Fatalf("ExportItemsCSV: %v", err)
	}

	items, err := svc.ParseItemsCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseItemsCSV: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "Radar" || items[0].UnitPriceExclVat != 1250 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].IsIncluded == nil || *items[1].IsIncluded {
		t.Error("exclusion flag lost in round trip")
	}
}

func TestBuildEquipmentWorkbook(t *testing.T) {
	svc := newExport()
	project := &entity.Project{ProjectNumber: "PRJ-2026-001", Name: "Zeester"}
	eq := &entity.Equipment{
		VatRate:         0.21,
		SubtotalExclVat: 1250,
		VatAmount:       262.50,
		TotalInclVat:    1512.50,
		Items: []entity.EquipmentItem{
			{Category: "navigation", Name: "Radar", Quantity: 1, Unit: "pcs", UnitPriceExclVat: 1250, LineTotal: 1250, IsIncluded: true},
		},
	}

	f, err := svc.BuildEquipmentWorkbook(project, eq)
	if err != nil {
		t.Fatalf("BuildEquipmentWorkbook: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue("Equipment", "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if !strings.Contains(title, "PRJ-2026-001") {
		t.Errorf("title = %q", title)
	}
	name, _ := f.GetCellValue("Equipment", "B5")
	if name != "Radar" {
		t.Errorf("item name cell = %q", name)
	}
}
