package revision

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

// ToResponse convierte una revisión al DTO de la API.
func ToResponse(rev *entity.Revision) dto.RevisionResponse {
	return dto.RevisionResponse{
		ID:           rev.ID,
		LocationID:   rev.LocationID,
		AuthorID:     rev.AuthorID,
		RevisionDate: rev.RevisionDate.Format(dto.DateLayout),
		Status:       string(rev.Status),
		Comments:     rev.Comments,
		CreatedAt:    rev.CreatedAt,
		UpdatedAt:    rev.UpdatedAt,
	}
}

// List lista las revisiones del tenant. Staff sólo ve sus propios borradores.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, q dto.ListRevisionsQuery) ([]dto.RevisionResponse, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	f := repository.RevisionFilter{
		ProductionID: actor.ProductionID,
		LocationID:   q.LocationID,
		Status:       entity.RevisionStatus(q.Status),
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if q.RevisionDate != "" {
		date, err := time.Parse(dto.DateLayout, q.RevisionDate)
		if err != nil {
			return nil, fmt.Errorf("revision_date: %w", domain.ErrInvalidInput)
		}
		f.RevisionDate = &date
	}
	if !actor.Role.IsManagerial() {
		if f.Status != "" && f.Status != entity.RevisionDraft {
			return []dto.RevisionResponse{}, nil
		}
		f.AuthorID = actor.UserID
		f.Status = entity.RevisionDraft
	}

	list, err := uc.repos.Revisions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RevisionResponse, 0, len(list))
	for _, rev := range list {
		out = append(out, ToResponse(rev))
	}
	return out, nil
}

// catalog carga nombres de ingredientes y productos del tenant.
type catalog struct {
	ingredients map[string]*entity.Ingredient
	products    map[string]*entity.Product
}

func (uc *UseCase) catalog(ctx context.Context, productionID string) (*catalog, error) {
	ings, err := uc.repos.Ingredients.ListByProduction(ctx, productionID)
	if err != nil {
		return nil, err
	}
	prods, err := uc.repos.Products.ListByProduction(ctx, productionID)
	if err != nil {
		return nil, err
	}
	c := &catalog{ingredients: make(map[string]*entity.Ingredient, len(ings)), products: make(map[string]*entity.Product, len(prods))}
	for _, i := range ings {
		c.ingredients[i.ID] = i
	}
	for _, p := range prods {
		c.products[p.ID] = p
	}
	return c, nil
}

func (c *catalog) report(r *entity.RevisionReport) dto.ReportResponse {
	out := dto.ReportResponse{
		IngredientID:     r.IngredientID,
		ExpectedQuantity: r.ExpectedQuantity,
		ActualQuantity:   r.ActualQuantity,
		Difference:       r.Difference,
		Percentage:       r.Percentage,
		Status:           string(r.Status),
	}
	if ing, ok := c.ingredients[r.IngredientID]; ok {
		out.IngredientName, out.Unit = ing.Name, ing.Unit
	}
	return out
}

// Detail devuelve la revisión con líneas y reports. Antes aplica MarkSeen.
func (uc *UseCase) Detail(ctx context.Context, actor entity.Actor, id string) (*dto.RevisionDetailResponse, error) {
	rev, err := uc.MarkSeen(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	cat, err := uc.catalog(ctx, actor.ProductionID)
	if err != nil {
		return nil, err
	}
	ingItems, err := uc.repos.Items.ListIngredientItems(ctx, rev.ID)
	if err != nil {
		return nil, err
	}
	prodItems, err := uc.repos.Items.ListProductItems(ctx, rev.ID)
	if err != nil {
		return nil, err
	}
	reports, err := uc.repos.Reports.ListByRevision(ctx, rev.ID, "")
	if err != nil {
		return nil, err
	}

	out := &dto.RevisionDetailResponse{
		Revision:        ToResponse(rev),
		IngredientItems: make([]dto.IngredientItemResponse, 0, len(ingItems)),
		ProductItems:    make([]dto.ProductItemResponse, 0, len(prodItems)),
		Reports:         make([]dto.ReportResponse, 0, len(reports)),
	}
	for _, it := range ingItems {
		line := dto.IngredientItemResponse{IngredientID: it.IngredientID, ActualQuantity: it.ActualQuantity, Comments: it.Comments}
		if ing, ok := cat.ingredients[it.IngredientID]; ok {
			line.IngredientName, line.Unit = ing.Name, ing.Unit
		}
		out.IngredientItems = append(out.IngredientItems, line)
	}
	for _, it := range prodItems {
		line := dto.ProductItemResponse{ProductID: it.ProductID, ActualQuantity: it.ActualQuantity, Comments: it.Comments}
		if p, ok := cat.products[it.ProductID]; ok {
			line.ProductName = p.Name
		}
		out.ProductItems = append(out.ProductItems, line)
	}
	for _, r := range reports {
		out.Reports = append(out.Reports, cat.report(r))
	}
	return out, nil
}

// Reports lista los reports de la revisión ordenados por % descendente. status vacío no filtra.
func (uc *UseCase) Reports(ctx context.Context, actor entity.Actor, id string, status entity.ReportStatus) ([]dto.ReportResponse, error) {
	switch status {
	case "", entity.ReportOK, entity.ReportWarning, entity.ReportCritical:
	default:
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrInvalidInput)
	}
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return nil, err
	}
	cat, err := uc.catalog(ctx, actor.ProductionID)
	if err != nil {
		return nil, err
	}
	reports, err := uc.repos.Reports.ListByRevision(ctx, rev.ID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, cat.report(r))
	}
	return out, nil
}

// Summary agrega los reports: conteo por clasificación, diferencia total y % promedio (2 decimales).
func (uc *UseCase) Summary(ctx context.Context, actor entity.Actor, id string) (*dto.SummaryResponse, error) {
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return nil, err
	}
	reports, err := uc.repos.Reports.ListByRevision(ctx, rev.ID, "")
	if err != nil {
		return nil, err
	}
	return Summarize(rev.ID, reports), nil
}

// Summarize calcula el resumen de una lista de reports.
func Summarize(revisionID string, reports []*entity.RevisionReport) *dto.SummaryResponse {
	out := &dto.SummaryResponse{RevisionID: revisionID, TotalDifference: decimal.Zero, AvgPercentage: decimal.Zero}
	sumPct := decimal.Zero
	for _, r := range reports {
		out.Total++
		switch r.Status {
		case entity.ReportOK:
			out.OK++
		case entity.ReportWarning:
			out.Warning++
		case entity.ReportCritical:
			out.Critical++
		}
		out.TotalDifference = out.TotalDifference.Add(r.Difference)
		sumPct = sumPct.Add(r.Percentage)
	}
	if out.Total > 0 {
		out.AvgPercentage = sumPct.DivRound(decimal.NewFromInt(int64(out.Total)), 2)
	}
	return out
}
