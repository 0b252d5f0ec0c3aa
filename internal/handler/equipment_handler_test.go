package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/service"
	"github.com/navisol/werf/internal/testutil"
)

func setupEquipmentRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	clientSvc := service.NewClientService(repos.Client, repos.Sequence)
	projectSvc := service.NewProjectService(repos.Project, repos.Client, repos.Sequence, 0.21)
	eqSvc := service.NewEquipmentService(repos.Equipment, repos.Project)

	ctx := context.Background()
	client, err := clientSvc.Create(ctx, "u1", &service.CreateClientRequest{Name: "Test Client"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	project, err := projectSvc.Create(ctx, "u1", &service.CreateProjectRequest{Name: "Test Build", ClientID: client.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	h := NewEquipmentHandler(eqSvc, service.NewExportService(config.CompanyConfig{Brand: "NaviSol"}))

	r := testutil.SetupRouter()
	projects := testutil.AuthGroup(r, "/api/v1").Group("/projects")
	projects.GET("/:id/equipment", h.Get)
	projects.POST("/:id/equipment/items", h.AddItem)
	projects.POST("/:id/equipment/freeze", h.Freeze)
	return r, project.ID
}

func TestEquipmentTotalsOverHTTP(t *testing.T) {
	r, projectID := setupEquipmentRouter(t)
	token := testutil.DefaultTestToken()

	for _, price := range []float64{100, 200, 300} {
		w := testutil.DoRequest(r, http.MethodPost, "/api/v1/projects/"+projectID+"/equipment/items",
			map[string]interface{}{
				"category":            "navigation",
				"name":                "Item",
				"quantity":            1,
				"unit_price_excl_vat": price,
			}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("add item status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/projects/"+projectID+"/equipment", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["subtotal_excl_vat"].(float64) != 600 {
		t.Errorf("subtotal = %v, want 600", data["subtotal_excl_vat"])
	}
	if data["vat_amount"].(float64) != 126 {
		t.Errorf("vat = %v, want 126", data["vat_amount"])
	}
	if data["total_incl_vat"].(float64) != 726 {
		t.Errorf("total = %v, want 726", data["total_incl_vat"])
	}
}

func TestFrozenEquipmentReturnsConflict(t *testing.T) {
	r, projectID := setupEquipmentRouter(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/projects/"+projectID+"/equipment/freeze", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("freeze status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/projects/"+projectID+"/equipment/items",
		map[string]interface{}{"category": "x", "name": "y"}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}
