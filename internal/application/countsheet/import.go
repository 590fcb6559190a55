// Package countsheet lee y escribe hojas .xlsx de conteo: importa líneas de conteo por nombre y
// exporta los reports de una revisión.
package countsheet

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// headerScanRows: filas iniciales donde se buscan los encabezados.
const headerScanRows = 10

var (
	nameHeaders     = []string{"nomenclatura", "nombre", "ingrediente", "producto"}
	quantityHeaders = []string{"cantidad"}
)

// Row es una fila de datos de la hoja. Line es el número de fila en la hoja (1-based).
type Row struct {
	Line     int
	Name     string
	Quantity decimal.Decimal
}

func matches(cell string, keys []string) bool {
	cell = foldName(cell)
	for _, k := range keys {
		if strings.Contains(cell, k) {
			return true
		}
	}
	return false
}

// Parse lee la hoja activa del libro. Los encabezados (nombre y cantidad) se buscan en las primeras
// 10 filas; las filas de datos empiezan después de la fila de encabezado. Las filas sin nombre o sin
// cantidad se ignoran; las que no tienen una cantidad numérica se devuelven como problemas.
func Parse(r io.Reader) ([]Row, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("abrir xlsx: %w: %w", domain.ErrInvalidInput, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("leer hoja %q: %w", sheet, err)
	}

	headerRow, nameCol, qtyCol := -1, -1, -1
	for i := 0; i < len(rows) && i < headerScanRows && headerRow < 0; i++ {
		n, q := -1, -1
		for j, cell := range rows[i] {
			switch {
			case n < 0 && matches(cell, nameHeaders):
				n = j
			case q < 0 && matches(cell, quantityHeaders):
				q = j
			}
		}
		if n >= 0 && q >= 0 {
			headerRow, nameCol, qtyCol = i, n, q
		}
	}
	if headerRow < 0 {
		return nil, nil, fmt.Errorf("no se encontraron las columnas Nomenclatura/Nombre y Cantidad: %w", domain.ErrInvalidInput)
	}

	var out []Row
	var problems []string
	for i := headerRow + 1; i < len(rows); i++ {
		cells := rows[i]
		if nameCol >= len(cells) || qtyCol >= len(cells) {
			continue
		}
		name := strings.TrimSpace(cells[nameCol])
		raw := strings.TrimSpace(cells[qtyCol])
		if name == "" || raw == "" {
			continue
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			problems = append(problems, fmt.Sprintf("fila %d: cantidad %q no numérica", i+1, raw))
			continue
		}
		out = append(out, Row{Line: i + 1, Name: name, Quantity: qty})
	}
	return out, problems, nil
}

// foldName normaliza un nombre para compararlo: sin acentos, minúsculas y espacios simples.
// "  Azúcar  Glass" → "azucar glass"
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// Resolve traduce filas por nombre a líneas de conteo. El nombre se busca primero entre los
// ingredientes y luego entre los productos (sin distinguir mayúsculas ni acentos). Las cantidades de producto
// se truncan a entero. Los nombres desconocidos y las cantidades negativas se devuelven como omitidos.
func Resolve(rows []Row, ingredients []*entity.Ingredient, products []*entity.Product) (dto.UpsertItemsRequest, []string) {
	ingByName := make(map[string]*entity.Ingredient, len(ingredients))
	for _, i := range ingredients {
		ingByName[foldName(i.Name)] = i
	}
	prodByName := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		prodByName[foldName(p.Name)] = p
	}

	var req dto.UpsertItemsRequest
	var skipped []string
	for _, r := range rows {
		key := foldName(r.Name)
		if r.Quantity.IsNegative() {
			skipped = append(skipped, fmt.Sprintf("fila %d: cantidad negativa para %q", r.Line, r.Name))
			continue
		}
		if ing, ok := ingByName[key]; ok {
			req.Ingredients = append(req.Ingredients, dto.IngredientCountRequest{IngredientID: ing.ID, ActualQuantity: r.Quantity})
			continue
		}
		if p, ok := prodByName[key]; ok {
			req.Products = append(req.Products, dto.ProductCountRequest{ProductID: p.ID, ActualQuantity: r.Quantity.IntPart()})
			continue
		}
		skipped = append(skipped, fmt.Sprintf("fila %d: %q no existe en el catálogo", r.Line, r.Name))
	}
	return req, skipped
}
