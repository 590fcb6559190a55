package revision

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jhoicas/revisiones-api/internal/application/countsheet"
	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// ImportItems carga líneas de conteo desde un .xlsx. Las filas que no se pueden usar se devuelven
// en Skipped; las válidas se guardan con las mismas reglas que UpsertItems.
func (uc *UseCase) ImportItems(ctx context.Context, actor entity.Actor, id string, r io.Reader) (*dto.ImportResultResponse, error) {
	if _, err := load(ctx, uc.repos, actor, id, false); err != nil {
		return nil, err
	}
	rows, problems, err := countsheet.Parse(r)
	if err != nil {
		return nil, err
	}
	ings, err := uc.repos.Ingredients.ListByProduction(ctx, actor.ProductionID)
	if err != nil {
		return nil, err
	}
	prods, err := uc.repos.Products.ListByProduction(ctx, actor.ProductionID)
	if err != nil {
		return nil, err
	}

	req, skipped := countsheet.Resolve(rows, ings, prods)

	if err := uc.UpsertItems(ctx, actor, id, req); err != nil {
		return nil, err
	}
	out := &dto.ImportResultResponse{
		Imported: len(req.Ingredients) + len(req.Products),
		Skipped:  append(problems, skipped...),
	}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	uc.log.Info().Str("revision_id", id).Int("imported", out.Imported).Int("skipped", len(out.Skipped)).Msg("conteo importado")
	return out, nil
}

func (uc *UseCase) locationName(ctx context.Context, locationID string) string {
	loc, err := uc.repos.Locations.GetByID(ctx, locationID)
	if err != nil || loc == nil {
		return locationID
	}
	return loc.Name
}

// ExportXLSX escribe los reports de la revisión en formato .xlsx.
func (uc *UseCase) ExportXLSX(ctx context.Context, actor entity.Actor, id string, w io.Writer) error {
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return err
	}
	reports, err := uc.Reports(ctx, actor, id, "")
	if err != nil {
		return err
	}
	return countsheet.WriteReports(w, ToResponse(rev), uc.locationName(ctx, rev.LocationID), reports)
}

// ExportPDF genera el informe PDF de la revisión. Requiere que la revisión tenga reports.
func (uc *UseCase) ExportPDF(ctx context.Context, actor entity.Actor, id string, renderer ReportRenderer) ([]byte, string, error) {
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return nil, "", err
	}
	summary, err := uc.Summary(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if summary.Total == 0 {
		return nil, "", fmt.Errorf("%w: la revisión aún no se ha calculado", domain.ErrInvalidInput)
	}
	reports, err := uc.Reports(ctx, actor, id, "")
	if err != nil {
		return nil, "", err
	}
	detail := &dto.RevisionDetailResponse{Revision: ToResponse(rev), Reports: reports}
	doc, err := renderer.RenderRevision(ctx, uc.locationName(ctx, rev.LocationID), detail, summary)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: %w", err)
	}
	filename := fmt.Sprintf("revision_%s.pdf", rev.RevisionDate.Format("20060102"))
	return doc, filename, nil
}

// ExportXLSXBytes devuelve el .xlsx completo en memoria.
func (uc *UseCase) ExportXLSXBytes(ctx context.Context, actor entity.Actor, id string) ([]byte, error) {
	var buf bytes.Buffer
	if err := uc.ExportXLSX(ctx, actor, id, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
