// Package reconciliation implementa el motor que compara el conteo de una revisión contra el
// inventario teórico (ancla o proyección + entradas − consumo por recetas) y escribe RevisionReport.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	"github.com/jhoicas/revisiones-api/internal/domain/revision"
)

var tracer = otel.Tracer("revisiones-api/reconciliation")

// Estados de Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result resume una ejecución del motor.
type Result struct {
	Status         string
	RevisionID     string
	AnchorID       string
	Period         revision.Period
	ReportsWritten int
	Warnings       int
	Message        string
}

// Engine ejecuta la conciliación. Es seguro para uso concurrente: no guarda estado por ejecución.
type Engine struct {
	log     zerolog.Logger
	workers int
}

// NewEngine construye el motor. workers <= 0 usa GOMAXPROCS.
func NewEngine(log zerolog.Logger, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{log: log.With().Str("component", "reconciliation").Logger(), workers: workers}
}

// inputs es todo lo que el motor lee antes de calcular. Se carga con los repos de la transacción
// y después sólo se lee desde los workers.
type inputs struct {
	anchor      *entity.Revision
	period      revision.Period
	ingredients []*entity.Ingredient
	recipes     map[string][]*entity.RecipeItem // por ingrediente
	sold        map[string]int64                // por producto
	incoming    map[string]decimal.Decimal      // por ingrediente
	initial     map[string]decimal.Decimal      // por ingrediente
	counted     map[string]decimal.Decimal      // por ingrediente
	issues      []revision.Issue
}

// Reconcile concilia la revisión con los repos dados (normalmente atados a la transacción del caso de
// uso). Sólo escribe RevisionReport. Un error devuelto envuelve domain.ErrCalculationFailed y el
// llamador debe descartar la transacción.
func (e *Engine) Reconcile(ctx context.Context, repos repository.Repositories, productionID string, rev *entity.Revision) (*Result, error) {
	ctx, span := tracer.Start(ctx, "reconciliation.Reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("revision.id", rev.ID),
		attribute.String("location.id", rev.LocationID),
	)

	res := &Result{Status: StatusError, RevisionID: rev.ID}
	log := e.log.With().Str("revision_id", rev.ID).Str("location_id", rev.LocationID).Logger()

	fail := func(stage string, err error) (*Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		log.Error().Err(err).Str("stage", stage).Msg("conciliación abortada")
		res.Message = fmt.Sprintf("error al calcular la revisión (%s)", stage)
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrNotFound) {
			return res, err
		}
		return res, fmt.Errorf("%w: %s: %w", domain.ErrCalculationFailed, stage, err)
	}

	in, err := e.load(ctx, repos, productionID, rev)
	if err != nil {
		return fail("carga", err)
	}
	res.Period = in.period
	if in.anchor != nil {
		res.AnchorID = in.anchor.ID
	}
	log.Info().
		Str("anchor_id", res.AnchorID).
		Time("period_from", in.period.From).
		Time("period_to", in.period.To).
		Int("ingredients", len(in.ingredients)).
		Msg("conciliación iniciada")

	lines, err := e.compute(ctx, in)
	if err != nil {
		return fail("cálculo", err)
	}

	reports := make([]*entity.RevisionReport, len(in.ingredients))
	issues := len(in.issues)
	for _, is := range in.issues {
		e.logIssue(log, "", is)
	}
	for i, ing := range in.ingredients {
		l := lines[i]
		for _, is := range l.Issues {
			e.logIssue(log, ing.ID, is)
		}
		issues += len(l.Issues)
		reports[i] = &entity.RevisionReport{
			RevisionID:       rev.ID,
			IngredientID:     ing.ID,
			ExpectedQuantity: l.Expected,
			ActualQuantity:   l.Actual,
			Difference:       l.Difference,
			Percentage:       l.Percentage,
			Status:           l.Status,
		}
	}

	if len(reports) > 0 {
		if err := repos.Reports.UpsertBatch(ctx, reports); err != nil {
			return fail("escritura", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fail("cancelación", err)
	}

	res.Status = StatusSuccess
	res.ReportsWritten = len(reports)
	res.Warnings = issues
	res.Message = fmt.Sprintf("revisión calculada: %d ingredientes", len(reports))
	span.SetAttributes(attribute.Int("reports.written", len(reports)), attribute.Int("warnings", issues))
	log.Info().Int("reports", len(reports)).Int("warnings", issues).Msg("conciliación completada")
	return res, nil
}

func (e *Engine) load(ctx context.Context, repos repository.Repositories, productionID string, rev *entity.Revision) (*inputs, error) {
	loc, err := repos.Locations.GetByID(ctx, rev.LocationID)
	if err != nil {
		return nil, fmt.Errorf("sede: %w", err)
	}
	if loc == nil {
		return nil, fmt.Errorf("sede %s: %w", rev.LocationID, domain.ErrNotFound)
	}
	if loc.ProductionID != productionID {
		return nil, fmt.Errorf("sede %s de otro tenant: %w", loc.ID, domain.ErrForbidden)
	}

	in := &inputs{
		recipes:  map[string][]*entity.RecipeItem{},
		sold:     map[string]int64{},
		incoming: map[string]decimal.Decimal{},
		initial:  map[string]decimal.Decimal{},
		counted:  map[string]decimal.Decimal{},
	}

	in.anchor, err = repos.Revisions.FindAnchor(ctx, rev.LocationID, rev.RevisionDate)
	if err != nil {
		return nil, fmt.Errorf("ancla: %w", err)
	}
	in.period = revision.PeriodFor(rev.RevisionDate, in.anchor)

	if in.ingredients, err = repos.Ingredients.ListByProduction(ctx, productionID); err != nil {
		return nil, fmt.Errorf("ingredientes: %w", err)
	}

	recipes, err := repos.Recipes.ListByProduction(ctx, productionID)
	if err != nil {
		return nil, fmt.Errorf("recetas: %w", err)
	}
	for _, r := range recipes {
		in.recipes[r.IngredientID] = append(in.recipes[r.IngredientID], r)
	}

	sales, err := repos.Sales.SumByProduct(ctx, rev.LocationID, in.period.From, in.period.To)
	if err != nil {
		return nil, fmt.Errorf("ventas: %w", err)
	}
	in.sold, in.issues = SoldUnits(sales)

	incoming, err := repos.Incoming.SumByIngredient(ctx, rev.LocationID, in.period.From, in.period.To)
	if err != nil {
		return nil, fmt.Errorf("entradas: %w", err)
	}
	for _, t := range incoming {
		if t.Total.Valid {
			in.incoming[t.IngredientID] = t.Total.Decimal
		}
	}

	if in.anchor != nil {
		items, err := repos.Items.ListIngredientItems(ctx, in.anchor.ID)
		if err != nil {
			return nil, fmt.Errorf("conteo del ancla: %w", err)
		}
		for _, it := range items {
			in.initial[it.IngredientID] = it.ActualQuantity
		}
		for _, ing := range in.ingredients {
			if _, ok := in.initial[ing.ID]; !ok {
				in.issues = append(in.issues, revision.Issue{Field: "initial:" + ing.ID, Reason: revision.ReasonMissingInAnchor})
			}
		}
	} else {
		stock, err := repos.Inventory.ListByLocation(ctx, rev.LocationID)
		if err != nil {
			return nil, fmt.Errorf("inventario actual: %w", err)
		}
		for _, s := range stock {
			in.initial[s.IngredientID] = s.Quantity
		}
	}

	items, err := repos.Items.ListIngredientItems(ctx, rev.ID)
	if err != nil {
		return nil, fmt.Errorf("conteo: %w", err)
	}
	for _, it := range items {
		in.counted[it.IngredientID] = it.ActualQuantity
	}
	return in, nil
}

// compute calcula las líneas en paralelo. Cada worker escribe sólo su índice de lines; el Wait es
// la barrera tras la cual el llamador lee todo.
func (e *Engine) compute(ctx context.Context, in *inputs) ([]revision.Line, error) {
	lines := make([]revision.Line, len(in.ingredients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ing := range in.ingredients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i] = e.line(in, ing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

// line concilia un ingrediente. Un pánico en la aritmética queda contenido en la línea.
func (e *Engine) line(in *inputs, ing *entity.Ingredient) (l revision.Line) {
	defer func() {
		if p := recover(); p != nil {
			l = revision.ComputeLine(revision.LineInput{Actual: in.counted[ing.ID]})
			l.Issues = append(l.Issues, revision.Issue{Field: "line", Reason: fmt.Sprintf("error inesperado, se usa 0: %v", p)})
		}
	}()

	consumption, issues := revision.Consumption(in.recipes[ing.ID], in.sold)
	l = revision.ComputeLine(revision.LineInput{
		Initial:     in.initial[ing.ID],
		Incoming:    in.incoming[ing.ID],
		Consumption: consumption,
		Actual:      in.counted[ing.ID],
	})
	l.Issues = append(issues, l.Issues...)
	return l
}

func (e *Engine) logIssue(log zerolog.Logger, ingredientID string, is revision.Issue) {
	ev := log.Warn().Str("field", is.Field)
	if ingredientID != "" {
		ev = ev.Str("ingredient_id", ingredientID)
	}
	ev.Str("value", is.Value.String()).Msg(is.Reason)
}

// SoldUnits convierte los totales de ventas en unidades por producto. Un SUM NULL cuenta como 0; un
// total negativo o no entero se reporta como Issue y se usa 0.
func SoldUnits(totals []repository.SalesTotal) (map[string]int64, []revision.Issue) {
	sold := make(map[string]int64, len(totals))
	var issues []revision.Issue
	for _, t := range totals {
		if !t.Total.Valid {
			continue
		}
		q := t.Total.Decimal
		if q.IsNegative() || !q.IsInteger() {
			issues = append(issues, revision.Issue{Field: "sales:" + t.ProductID, Reason: revision.ReasonInvalidSales, Value: q})
			continue
		}
		sold[t.ProductID] = q.IntPart()
	}
	return sold, issues
}
