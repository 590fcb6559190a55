// Package pdf genera el informe imprimible de una revisión de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sede + Estado         │  Fecha de revisión          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: ok / warning / critical + diferencia + % medio     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ingrediente | Esperado | Real | Dif. | % | Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: comentarios de la revisión                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarning  = &props.Color{Red: 191, Green: 120, Blue: 0}
	colorCritical = &props.Color{Red: 180, Green: 20, Blue: 20}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa revision.ReportRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

var _ apprevision.ReportRenderer = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador. Los números se formatean con las convenciones de lang.
func NewMarotoPDFGenerator(lang language.Tag) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(lang)}
}

// RenderRevision genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderRevision(
	ctx context.Context,
	locationName string,
	detail *dto.RevisionDetailResponse,
	summary *dto.SummaryResponse,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Revisión de inventario", true).
		WithAuthor(locationName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(locationName, detail.Revision))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.summaryRow(summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableDetailRows(detail.Reports) {
		m.AddRows(r)
	}

	if detail.Revision.Comments != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(commentsRow(detail.Revision.Comments))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: sede y estado (izq), fecha de la revisión (der).
func headerRow(locationName string, rev dto.RevisionResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(locationName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+rev.Status, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REVISIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(rev.RevisionDate, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
		),
	)
}

// summaryRow: conteo por clasificación y agregados.
func (g *MarotoPDFGenerator) summaryRow(s *dto.SummaryResponse) core.Row {
	cell := func(label, value string, c *props.Color) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Color: c, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("TOTAL", g.printer.Sprintf("%d", s.Total), colorPrimary),
		cell("OK", g.printer.Sprintf("%d", s.OK), colorPrimary),
		cell("WARNING", g.printer.Sprintf("%d", s.Warning), colorWarning),
		cell("CRITICAL", g.printer.Sprintf("%d", s.Critical), colorCritical),
		cell("DIFERENCIA", g.number(s.TotalDifference, 3), colorPrimary),
		cell("% MEDIO", g.number(s.AvgPercentage, 2)+"%", colorPrimary),
	)
}

// tableHeaderRow: cabecera de la tabla de reports.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ingrediente", 4, align.Left),
		h("Esperado", 2, align.Right),
		h("Real", 2, align.Right),
		h("Dif.", 2, align.Right),
		h("%", 1, align.Right),
		h("Estado", 1, align.Center),
	)
}

// tableDetailRows: una fila por report, en el orden recibido (% descendente).
func (g *MarotoPDFGenerator) tableDetailRows(reports []dto.ReportResponse) []core.Row {
	result := make([]core.Row, 0, len(reports))
	for _, r := range reports {
		name := r.IngredientName
		if r.Unit != "" {
			name += " (" + r.Unit + ")"
		}
		num := func(d decimal.Decimal, places int32) core.Col {
			return col.New(2).Add(text.New(g.number(d, places), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}))
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			num(r.ExpectedQuantity, 3),
			num(r.ActualQuantity, 3),
			num(r.Difference, 3),
			col.New(1).Add(text.New(g.number(r.Percentage, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(r.Status, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1, Color: statusColor(r.Status),
			})),
		))
	}
	return result
}

func commentsRow(comments string) core.Row {
	return row.New(20).Add(col.New(12).Add(
		text.New("COMENTARIOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(comments, props.Text{Size: 8, Color: colorGray, Top: 6}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(status string) *props.Color {
	switch status {
	case "warning":
		return colorWarning
	case "critical":
		return colorCritical
	default:
		return colorGray
	}
}

// number formatea d con separadores de miles del idioma configurado.
// Ej (es): 1234.5 con 3 decimales → "1.234,500"
func (g *MarotoPDFGenerator) number(d decimal.Decimal, places int32) string {
	f, _ := d.Round(places).Float64()
	return g.printer.Sprint(number.Decimal(f, number.Scale(int(places))))
}
