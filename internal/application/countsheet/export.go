package countsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
)

const reportSheet = "Conciliación"

var reportHeader = []interface{}{"Ingrediente", "Unidad", "Esperado", "Real", "Diferencia", "% Desviación", "Estado"}

// statusFill: color de fondo por clasificación.
var statusFill = map[string]string{
	"ok":       "#D4EDDA",
	"warning":  "#FFF3CD",
	"critical": "#F8D7DA",
}

// WriteReports escribe un .xlsx con una fila por report, precedido de la cabecera de la revisión.
func WriteReports(w io.Writer, rev dto.RevisionResponse, locationName string, reports []dto.ReportResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: estilo: %w", err)
	}
	fills := make(map[string]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}})
		if err != nil {
			return fmt.Errorf("xlsx: estilo %s: %w", status, err)
		}
		fills[status] = id
	}

	meta := [][]interface{}{
		{"Sede", locationName},
		{"Fecha", rev.RevisionDate},
		{"Estado", rev.Status},
	}
	for i, m := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(reportSheet, cell, &m); err != nil {
			return fmt.Errorf("xlsx: cabecera: %w", err)
		}
	}

	headerRowNum := len(meta) + 2
	first, _ := excelize.CoordinatesToCellName(1, headerRowNum)
	last, _ := excelize.CoordinatesToCellName(len(reportHeader), headerRowNum)
	if err := f.SetSheetRow(reportSheet, first, &reportHeader); err != nil {
		return fmt.Errorf("xlsx: encabezados: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, first, last, bold); err != nil {
		return fmt.Errorf("xlsx: estilo encabezados: %w", err)
	}

	for i, r := range reports {
		rowNum := headerRowNum + 1 + i
		values := []interface{}{
			r.IngredientName,
			r.Unit,
			r.ExpectedQuantity.InexactFloat64(),
			r.ActualQuantity.InexactFloat64(),
			r.Difference.InexactFloat64(),
			r.Percentage.InexactFloat64(),
			r.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: fila %d: %w", rowNum, err)
		}
		if style, ok := fills[r.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(values), rowNum)
			if err := f.SetCellStyle(reportSheet, statusCell, statusCell, style); err != nil {
				return fmt.Errorf("xlsx: estilo fila %d: %w", rowNum, err)
			}
		}
	}

	if err := f.SetColWidth(reportSheet, "A", "A", 32); err != nil {
		return fmt.Errorf("xlsx: ancho de columna: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir: %w", err)
	}
	return nil
}
