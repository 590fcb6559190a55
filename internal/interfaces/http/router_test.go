package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/application/inventory"
	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/application/tenant"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/lock"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/memory"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/revisiones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/revisiones-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type api struct {
	app   *fiber.App
	prod  *entity.Production
	loc   *entity.Location
	flour *entity.Ingredient
	sugar *entity.Ingredient
	bread *entity.Product
}

func newAPI(t *testing.T) *api {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	repos := s.Repositories()

	a := &api{prod: &entity.Production{Name: "Panadería Centro"}}
	require.NoError(t, repos.Productions.Create(ctx, a.prod))
	a.loc = &entity.Location{ProductionID: a.prod.ID, Name: "Sede 1"}
	require.NoError(t, repos.Locations.Create(ctx, a.loc))
	a.flour = &entity.Ingredient{ProductionID: a.prod.ID, Name: "Harina", Unit: entity.UnitKilogram}
	a.sugar = &entity.Ingredient{ProductionID: a.prod.ID, Name: "Azúcar", Unit: entity.UnitKilogram}
	require.NoError(t, repos.Ingredients.Create(ctx, a.flour))
	require.NoError(t, repos.Ingredients.Create(ctx, a.sugar))
	a.bread = &entity.Product{ProductionID: a.prod.ID, Name: "Pan"}
	require.NoError(t, repos.Products.Create(ctx, a.bread))
	require.NoError(t, repos.Recipes.Upsert(ctx, &entity.RecipeItem{
		ProductID: a.bread.ID, IngredientID: a.flour.ID, Quantity: decimal.RequireFromString("0.2"),
	}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ProductionID: a.prod.ID, Username: "ana", Role: entity.RoleStaff}))

	log := zerolog.Nop()
	revUC := apprevision.NewUseCase(repos, s, reconciliation.NewEngine(log, 2), lock.NewLocalLocker(), 5*time.Second, log)

	a.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	a.app.Use(apphttp.RequestLogger(log))
	apphttp.Router(a.app, apphttp.RouterDeps{
		RevisionUC:  revUC,
		InventoryUC: inventory.NewUseCase(repos, log),
		TenantUC:    tenant.NewUseCase(s, log),
		PDF:         pdf.NewMarotoPDFGenerator(language.Spanish),
		JWTSecret:   testJWTSecret,
		Log:         log,
	})
	return a
}

func (a *api) token(t *testing.T, userID string, role entity.Role) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, a.prod.ID, string(role), testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (a *api) do(t *testing.T, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

// createRevision crea una revisión y carga el conteo de harina y azúcar.
func (a *api) createRevision(t *testing.T, auth, date string) dto.RevisionResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/revisions", auth, dto.CreateRevisionRequest{LocationID: a.loc.ID, RevisionDate: date})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rev dto.RevisionResponse
	decode(t, resp, &rev)

	resp = a.do(t, http.MethodPut, "/api/revisions/"+rev.ID+"/items", auth, map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"ingredient_id": a.flour.ID, "actual_quantity": "10"},
			{"ingredient_id": a.sugar.ID, "actual_quantity": "2.5"},
		},
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	return rev
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinToken_Retorna401(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/revisions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RutaInexistente_ErrorJSON(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/nada", a.token(t, "u-mgr", entity.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestCreateRevision_FechaInvalida_Retorna400(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/revisions", a.token(t, "u-staff", entity.RoleStaff),
		dto.CreateRevisionRequest{LocationID: a.loc.ID, RevisionDate: "10/03/2026"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestCreateRevision_Duplicada_Retorna409(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPost, "/api/revisions", staff, dto.CreateRevisionRequest{LocationID: a.loc.ID, RevisionDate: "2026-03-10"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDetail_Inexistente_Retorna404(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/revisions/no-existe", a.token(t, "u-mgr", entity.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestUpsertItems_CantidadNegativa_Retorna400(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPut, "/api/revisions/"+rev.ID+"/items", staff, map[string]interface{}{
		"ingredients": []map[string]interface{}{{"ingredient_id": a.flour.ID, "actual_quantity": "-1"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_StaffBloqueadoPorRol(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/calculate", staff, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCicloCompleto_CalcularAprobarYConsultarInventario(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	mgr := a.token(t, "u-mgr", entity.RoleManager)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/calculate", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var calc dto.CalculationResponse
	decode(t, resp, &calc)
	assert.Equal(t, "success", calc.Status)
	assert.Equal(t, 2, calc.ReportsWritten)
	assert.Equal(t, "processing", calc.Revision.Status)

	resp = a.do(t, http.MethodGet, "/api/revisions/"+rev.ID+"/summary", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum dto.SummaryResponse
	decode(t, resp, &sum)
	assert.Equal(t, 2, sum.Total)

	resp = a.do(t, http.MethodGet, "/api/revisions/"+rev.ID+"/reports?status=critical", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reports []dto.ReportResponse
	decode(t, resp, &reports)
	assert.Len(t, reports, 2)

	resp = a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/approve", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var appr dto.CalculationResponse
	decode(t, resp, &appr)
	assert.Equal(t, "completed", appr.Revision.Status)

	resp = a.do(t, http.MethodGet, "/api/locations/"+a.loc.ID+"/inventory", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv dto.LocationInventoryResponse
	decode(t, resp, &inv)
	got := map[string]string{}
	for _, it := range inv.Items {
		got[it.IngredientID] = it.Quantity.String()
	}
	assert.Equal(t, "10", got[a.flour.ID])
	assert.Equal(t, "2.5", got[a.sugar.ID])

	// completed no admite submit
	resp = a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/submit", staff, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "staff ya no ve la revisión completada")
	resp = a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/reject", mgr, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, resp))
}

func TestSubmitYReject_VuelveADraft(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	mgr := a.token(t, "u-mgr", entity.RoleManager)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/submit", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// abrirla como gestión la pasa a processing
	resp = a.do(t, http.MethodGet, "/api/revisions/"+rev.ID, mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail dto.RevisionDetailResponse
	decode(t, resp, &detail)
	assert.Equal(t, "processing", detail.Revision.Status)
	assert.Len(t, detail.IngredientItems, 2)

	resp = a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/reject", mgr, dto.RejectRevisionRequest{Reason: "falta azúcar"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.RevisionResponse
	decode(t, resp, &out)
	assert.Equal(t, "draft", out.Status)
	assert.Contains(t, out.Comments, "[Rechazada: falta azúcar]")
}

func TestList_StaffSoloVeSusBorradores(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	other := a.token(t, "u-other", entity.RoleStaff)
	mgr := a.token(t, "u-mgr", entity.RoleManager)
	a.createRevision(t, staff, "2026-03-10")
	a.createRevision(t, other, "2026-03-11")

	var mine []dto.RevisionResponse
	decode(t, a.do(t, http.MethodGet, "/api/revisions", staff, nil), &mine)
	assert.Len(t, mine, 1)

	var all []dto.RevisionResponse
	decode(t, a.do(t, http.MethodGet, "/api/revisions?status=draft", mgr, nil), &all)
	assert.Len(t, all, 2)

	resp := a.do(t, http.MethodGet, "/api/revisions?status=borrador", mgr, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDelete_SoloGestion(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodDelete, "/api/revisions/"+rev.ID, staff, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodDelete, "/api/revisions/"+rev.ID, a.token(t, "u-acc", entity.RoleAccounting), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Importación y exportación
// ──────────────────────────────────────────────────────────────────────────────

func TestImport_HojaDeConteo(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	rev := a.createRevision(t, staff, "2026-03-10")

	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]interface{}{"Nombre", "Cantidad"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]interface{}{"Harina", 4}))
	require.NoError(t, x.SetSheetRow(sheet, "A3", &[]interface{}{"Desconocido", 1}))
	var sheetBuf bytes.Buffer
	require.NoError(t, x.Write(&sheetBuf))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "conteo.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(sheetBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/revisions/"+rev.ID+"/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", staff)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ImportResultResponse
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Imported)
	assert.Len(t, out.Skipped, 1)
}

func TestImport_SinArchivo_Retorna400(t *testing.T) {
	a := newAPI(t)
	staff := a.token(t, "u-staff", entity.RoleStaff)
	rev := a.createRevision(t, staff, "2026-03-10")

	resp := a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/import", staff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_FILE", errorCode(t, resp))
}

func TestExport_XLSXYPDF(t *testing.T) {
	a := newAPI(t)
	mgr := a.token(t, "u-mgr", entity.RoleManager)
	rev := a.createRevision(t, mgr, "2026-03-10")

	// sin calcular no hay informe
	resp := a.do(t, http.MethodGet, "/api/revisions/"+rev.ID+"/export/pdf", mgr, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/revisions/"+rev.ID+"/calculate", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/revisions/"+rev.ID+"/export/xlsx", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/vnd.openxmlformats"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_, err = excelize.OpenReader(bytes.NewReader(raw))
	assert.NoError(t, err)

	resp = a.do(t, http.MethodGet, "/api/revisions/"+rev.ID+"/export/pdf", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "revision_20260310.pdf")
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario y tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterIncoming_GestionRegistraStaffNo(t *testing.T) {
	a := newAPI(t)
	in := dto.RegisterIncomingRequest{
		IngredientID: a.flour.ID, LocationID: a.loc.ID, Date: "2026-03-09",
		Quantity: decimal.RequireFromString("3.5"),
	}

	resp := a.do(t, http.MethodPost, "/api/inventory/incoming", a.token(t, "u-staff", entity.RoleStaff), in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/inventory/incoming", a.token(t, "u-mgr", entity.RoleManager), in)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegisterSale_ProductoDesconocido_Retorna404(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/inventory/sales", a.token(t, "u-mgr", entity.RoleManager),
		dto.RegisterSaleRequest{ProductID: "no-existe", LocationID: a.loc.ID, Date: "2026-03-09", Quantity: 4})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProduction_SoloAdmin(t *testing.T) {
	a := newAPI(t)
	path := "/api/productions/" + a.prod.ID

	resp := a.do(t, http.MethodDelete, path, a.token(t, "u-mgr", entity.RoleManager), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodDelete, path, a.token(t, "u-admin", entity.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	decode(t, resp, &out)
	assert.Equal(t, float64(1), out["users_deleted"])
}
