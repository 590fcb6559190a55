package revision_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/lock"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store   *memory.Store
	repos   repository.Repositories
	uc      *revision.UseCase
	loc     *entity.Location
	flour   *entity.Ingredient
	sugar   *entity.Ingredient
	bread   *entity.Product
	staff   entity.Actor
	other   entity.Actor
	manager entity.Actor
	foreign entity.Actor
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	return newFixtureWithTx(t, nil)
}

// newFixtureWithTx permite envolver el TxRunner del store (p. ej. para inyectar fallos).
func newFixtureWithTx(t *testing.T, wrap func(repository.TxRunner) repository.TxRunner) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	f := &fixture{store: s, repos: s.Repositories()}

	prod := &entity.Production{Name: "Panadería Centro"}
	require.NoError(t, f.repos.Productions.Create(ctx, prod))
	f.loc = &entity.Location{ProductionID: prod.ID, Name: "Sede 1"}
	require.NoError(t, f.repos.Locations.Create(ctx, f.loc))

	f.flour = &entity.Ingredient{ProductionID: prod.ID, Name: "Harina", Unit: entity.UnitKilogram}
	f.sugar = &entity.Ingredient{ProductionID: prod.ID, Name: "Azúcar", Unit: entity.UnitKilogram}
	require.NoError(t, f.repos.Ingredients.Create(ctx, f.flour))
	require.NoError(t, f.repos.Ingredients.Create(ctx, f.sugar))
	f.bread = &entity.Product{ProductionID: prod.ID, Name: "Pan"}
	require.NoError(t, f.repos.Products.Create(ctx, f.bread))
	require.NoError(t, f.repos.Recipes.Upsert(ctx, &entity.RecipeItem{ProductID: f.bread.ID, IngredientID: f.flour.ID, Quantity: d("0.2")}))

	other := &entity.Production{Name: "Otra"}
	require.NoError(t, f.repos.Productions.Create(ctx, other))

	f.staff = entity.Actor{UserID: "u-staff", ProductionID: prod.ID, Role: entity.RoleStaff}
	f.other = entity.Actor{UserID: "u-other", ProductionID: prod.ID, Role: entity.RoleStaff}
	f.manager = entity.Actor{UserID: "u-mgr", ProductionID: prod.ID, Role: entity.RoleManager}
	f.foreign = entity.Actor{UserID: "u-x", ProductionID: other.ID, Role: entity.RoleAdmin}

	var tx repository.TxRunner = s
	if wrap != nil {
		tx = wrap(s)
	}
	f.uc = revision.NewUseCase(f.repos, tx, reconciliation.NewEngine(zerolog.Nop(), 2), lock.NewLocalLocker(), 5*time.Second, zerolog.Nop())
	return f
}

func (f *fixture) create(t *testing.T, actor entity.Actor, date string) *entity.Revision {
	t.Helper()
	rev, err := f.uc.Create(context.Background(), actor, dto.CreateRevisionRequest{LocationID: f.loc.ID, RevisionDate: date})
	require.NoError(t, err)
	return rev
}

func (f *fixture) count(t *testing.T, actor entity.Actor, id string, flour, sugar string) {
	t.Helper()
	require.NoError(t, f.uc.UpsertItems(context.Background(), actor, id, dto.UpsertItemsRequest{
		Ingredients: []dto.IngredientCountRequest{
			{IngredientID: f.flour.ID, ActualQuantity: d(flour)},
			{IngredientID: f.sugar.ID, ActualQuantity: d(sugar)},
		},
	}))
}

func (f *fixture) status(t *testing.T, id string) entity.RevisionStatus {
	t.Helper()
	rev, err := f.repos.Revisions.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rev)
	return rev.Status
}

// failingSales hace fallar el motor al leer las ventas.
type failingSales struct{ repository.SalesRepository }

func (failingSales) SumByProduct(context.Context, string, time.Time, time.Time) ([]repository.SalesTotal, error) {
	return nil, errors.New("ventas no disponibles")
}

type failingTx struct{ inner repository.TxRunner }

func (t failingTx) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return t.inner.Run(ctx, func(repos repository.Repositories) error {
		repos.Sales = failingSales{repos.Sales}
		return fn(repos)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DraftConAutor(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	assert.Equal(t, entity.RevisionDraft, rev.Status)
	assert.Equal(t, f.staff.UserID, rev.AuthorID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), rev.RevisionDate)
}

func TestCreate_DuplicadaMismaSedeYFecha(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Create(context.Background(), f.manager, dto.CreateRevisionRequest{LocationID: f.loc.ID, RevisionDate: "2026-03-10"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_SedeDeOtroTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.foreign, dto.CreateRevisionRequest{LocationID: f.loc.ID, RevisionDate: "2026-03-10"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_FechaInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.staff, dto.CreateRevisionRequest{LocationID: f.loc.ID, RevisionDate: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_DesdeDraftCalculaYCompleta(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")

	out, err := f.uc.Approve(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, reconciliation.StatusSuccess, out.Result.Status)
	assert.Equal(t, entity.RevisionCompleted, out.Revision.Status)
	assert.Equal(t, 2, out.CarriedForward)
	assert.Equal(t, entity.RevisionCompleted, f.status(t, rev.ID))

	inv, err := f.repos.Inventory.Get(context.Background(), f.flour.ID, f.loc.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.True(t, d("10").Equal(inv.Quantity))
}

func TestApprove_ConReportsNoRecalcula(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")
	_, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	out, err := f.uc.Approve(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	assert.Nil(t, out.Result)
	assert.Equal(t, entity.RevisionCompleted, out.Revision.Status)
}

func TestSubmit_CompletedRechaza(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	_, err := f.uc.Approve(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	_, err = f.uc.Submit(context.Background(), f.manager, rev.ID)
	assert.Error(t, err)
	assert.Equal(t, entity.RevisionCompleted, f.status(t, rev.ID))
}

func TestSubmit_StaffEnviaSuPropiaRevision(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	out, err := f.uc.Submit(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RevisionSubmitted, out.Status)
}

func TestSubmit_SoloElAutor(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Submit(context.Background(), f.manager, rev.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Otro staff ni siquiera ve el borrador.
	_, err = f.uc.Submit(context.Background(), f.other, rev.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, entity.RevisionDraft, f.status(t, rev.ID))
}

func TestCalculate_StaffNoPuede(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Calculate(context.Background(), f.staff, rev.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	reports, err := f.repos.Reports.CountByRevision(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Zero(t, reports)
}

func TestCalculate_DraftPasaAProcessing(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")

	out, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RevisionProcessing, out.Revision.Status)
	assert.Equal(t, 2, out.Result.ReportsWritten)
	assert.Zero(t, out.CarriedForward)
}

func TestCalculate_SubmittedRechaza(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	_, err := f.uc.Submit(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)

	_, err = f.uc.Calculate(context.Background(), f.manager, rev.ID)
	var te *domain.TransitionError
	assert.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCalculate_CompletedReaplicaCarryForward(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")
	_, err := f.uc.Approve(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	out, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RevisionCompleted, out.Revision.Status)
	assert.Equal(t, 2, out.CarriedForward)
}

func TestCalculate_FalloDelMotorNoAvanzaEstado(t *testing.T) {
	f := newFixtureWithTx(t, func(tx repository.TxRunner) repository.TxRunner { return failingTx{inner: tx} })
	rev := f.create(t, f.staff, "2026-03-10")

	out, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	assert.ErrorIs(t, err, domain.ErrCalculationFailed)
	require.NotNil(t, out.Result)
	assert.Equal(t, reconciliation.StatusError, out.Result.Status)
	assert.Equal(t, entity.RevisionDraft, f.status(t, rev.ID))

	_, err = f.uc.Approve(context.Background(), f.manager, rev.ID)
	assert.ErrorIs(t, err, domain.ErrCalculationFailed)
	assert.Equal(t, entity.RevisionDraft, f.status(t, rev.ID))
}

func TestCalculate_ConcurrentesSeSerializan(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.Calculate(context.Background(), f.manager, rev.ID)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	n, err := f.repos.Reports.CountByRevision(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReject_VuelveADraftConMotivo(t *testing.T) {
	f := newFixture(t)
	rev, err := f.uc.Create(context.Background(), f.staff, dto.CreateRevisionRequest{
		LocationID: f.loc.ID, RevisionDate: "2026-03-10", Comments: "turno mañana",
	})
	require.NoError(t, err)
	_, err = f.uc.Submit(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)

	out, err := f.uc.Reject(context.Background(), f.manager, rev.ID, "faltan conteos")
	require.NoError(t, err)
	assert.Equal(t, entity.RevisionDraft, out.Status)
	assert.Equal(t, "turno mañana\n[Rechazada: faltan conteos]", out.Comments)
}

func TestReject_DraftRechaza(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Reject(context.Background(), f.manager, rev.ID, "x")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDelete_SoloGestion(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "1", "1")

	assert.ErrorIs(t, f.uc.Delete(context.Background(), f.staff, rev.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(context.Background(), f.manager, rev.ID))

	got, err := f.repos.Revisions.GetByID(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	items, err := f.repos.Items.ListIngredientItems(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Carry-forward y encadenamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_SiguienteRevisionUsaElConteoAnterior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, first.ID, "10", "2")
	_, err := f.uc.Approve(ctx, f.manager, first.ID)
	require.NoError(t, err)

	// 10 panes el día 11 consumen 2 kg de harina.
	require.NoError(t, f.repos.Sales.Create(ctx, &entity.Sales{
		ProductID: f.bread.ID, LocationID: f.loc.ID, Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), Quantity: 10,
	}))
	second := f.create(t, f.staff, "2026-03-12")
	f.count(t, f.staff, second.ID, "8", "2")

	out, err := f.uc.Calculate(ctx, f.manager, second.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, out.Result.AnchorID)

	reports, err := f.uc.Reports(ctx, f.manager, second.ID, "")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, string(entity.ReportOK), r.Status, r.IngredientName)
		assert.True(t, r.Difference.IsZero(), r.IngredientName)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Visibilidad y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestDetail_GestionMarcaVistaLaEnviada(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	_, err := f.uc.Submit(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)

	detail, err := f.uc.Detail(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RevisionProcessing), detail.Revision.Status)
	assert.Equal(t, entity.RevisionProcessing, f.status(t, rev.ID))
}

func TestDetail_StaffNoCambiaEstado(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "3.5", "1")

	detail, err := f.uc.Detail(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RevisionDraft), detail.Revision.Status)
	assert.Len(t, detail.IngredientItems, 2)
}

func TestDetail_StaffNoVeRevisionEnviada(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	_, err := f.uc.Submit(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)

	_, err = f.uc.Detail(context.Background(), f.staff, rev.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetail_OtroTenantNoEncuentra(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Detail(context.Background(), f.foreign, rev.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_StaffSoloSusBorradores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.create(t, f.staff, "2026-03-10")
	sent := f.create(t, f.staff, "2026-03-11")
	_, err := f.uc.Submit(ctx, f.staff, sent.ID)
	require.NoError(t, err)
	f.create(t, f.other, "2026-03-12")

	list, err := f.uc.List(ctx, f.staff, dto.ListRevisionsQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = f.uc.List(ctx, f.staff, dto.ListRevisionsQuery{Status: "submitted"})
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := f.uc.List(ctx, f.manager, dto.ListRevisionsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "2026-03-12", all[0].RevisionDate)
}

func TestSummary_AgregaReports(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")
	_, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	s, err := f.uc.Summary(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 2, s.Critical)
	assert.True(t, d("12").Equal(s.TotalDifference))
	assert.True(t, d("100").Equal(s.AvgPercentage))
}

func TestSummarize_PromedioRedondeado(t *testing.T) {
	s := revision.Summarize("r", []*entity.RevisionReport{
		{Difference: d("1"), Percentage: d("1.00"), Status: entity.ReportOK},
		{Difference: d("-2"), Percentage: d("5.00"), Status: entity.ReportWarning},
		{Difference: d("0.5"), Percentage: d("4.01"), Status: entity.ReportWarning},
	})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.OK)
	assert.Equal(t, 2, s.Warning)
	assert.True(t, d("-0.5").Equal(s.TotalDifference))
	assert.Equal(t, "3.34", s.AvgPercentage.StringFixed(2))
}

func TestReports_FiltroInvalido(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	_, err := f.uc.Reports(context.Background(), f.manager, rev.ID, "pendiente")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Líneas de conteo
// ──────────────────────────────────────────────────────────────────────────────

func TestUpsertItems_CantidadNegativaNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	err := f.uc.UpsertItems(context.Background(), f.staff, rev.ID, dto.UpsertItemsRequest{
		Ingredients: []dto.IngredientCountRequest{
			{IngredientID: f.flour.ID, ActualQuantity: d("4")},
			{IngredientID: f.sugar.ID, ActualQuantity: d("-1")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	items, err := f.repos.Items.ListIngredientItems(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpsertItems_IngredienteDesconocido(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	err := f.uc.UpsertItems(context.Background(), f.staff, rev.ID, dto.UpsertItemsRequest{
		Ingredients: []dto.IngredientCountRequest{{IngredientID: "no-existe", ActualQuantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertItems_SoloEnDraft(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	_, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	err = f.uc.UpsertItems(context.Background(), f.manager, rev.ID, dto.UpsertItemsRequest{
		Products: []dto.ProductCountRequest{{ProductID: f.bread.ID, ActualQuantity: 3}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpsertItems_ReemplazaLinea(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "1", "1")
	f.count(t, f.manager, rev.ID, "2.1235", "1")

	items, err := f.repos.Items.ListIngredientItems(context.Background(), rev.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		if it.IngredientID == f.flour.ID {
			assert.Equal(t, "2.124", it.ActualQuantity.StringFixed(3))
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Importación y exportación
// ──────────────────────────────────────────────────────────────────────────────

func TestImportItems_ResuelveNombres(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")

	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]interface{}{"Nombre", "Cantidad"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]interface{}{"harina", "7,25"}))
	require.NoError(t, x.SetSheetRow(sheet, "A3", &[]interface{}{"Pan", 12}))
	require.NoError(t, x.SetSheetRow(sheet, "A4", &[]interface{}{"Levadura", 1}))
	var buf bytes.Buffer
	require.NoError(t, x.Write(&buf))

	res, err := f.uc.ImportItems(context.Background(), f.staff, rev.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, res.Skipped, 1)

	detail, err := f.uc.Detail(context.Background(), f.staff, rev.ID)
	require.NoError(t, err)
	require.Len(t, detail.IngredientItems, 1)
	assert.True(t, d("7.25").Equal(detail.IngredientItems[0].ActualQuantity))
	require.Len(t, detail.ProductItems, 1)
	assert.Equal(t, int64(12), detail.ProductItems[0].ActualQuantity)
}

func TestExportXLSX_HojaDeConciliacion(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	f.count(t, f.staff, rev.ID, "10", "2")
	_, err := f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)

	doc, err := f.uc.ExportXLSXBytes(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	x, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err)
	rows, err := x.GetRows("Conciliación")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

type fakeRenderer struct {
	location string
	reports  int
}

func (r *fakeRenderer) RenderRevision(_ context.Context, locationName string, detail *dto.RevisionDetailResponse, _ *dto.SummaryResponse) ([]byte, error) {
	r.location, r.reports = locationName, len(detail.Reports)
	return []byte("%PDF-fake"), nil
}

func TestExportPDF_RequiereCalculo(t *testing.T) {
	f := newFixture(t)
	rev := f.create(t, f.staff, "2026-03-10")
	r := &fakeRenderer{}

	_, _, err := f.uc.ExportPDF(context.Background(), f.manager, rev.ID, r)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Calculate(context.Background(), f.manager, rev.ID)
	require.NoError(t, err)
	doc, name, err := f.uc.ExportPDF(context.Background(), f.manager, rev.ID, r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(doc))
	assert.Equal(t, "revision_20260310.pdf", name)
	assert.Equal(t, "Sede 1", r.location)
	assert.Equal(t, 2, r.reports)
}
