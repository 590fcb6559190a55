package revision

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// Issue es un problema de calidad de datos detectado al conciliar un ingrediente.
// Nunca es fatal: el valor afectado se sustituye (cero o límite saturado).
type Issue struct {
	Field  string
	Reason string
	Value  decimal.Decimal
}

// Motivos de Issue.
const (
	ReasonSaturated         = "valor fuera de rango, saturado"
	ReasonMissingInAnchor   = "ingrediente ausente en la revisión ancla, se usa 0"
	ReasonNonPositiveRecipe = "cantidad de receta no positiva, se omite"
	ReasonInvalidSales      = "total de ventas no entero o negativo, se usa 0"
	ReasonNegativeExpected  = "esperado negativo"
)

// LineInput son las entradas ya agregadas de un ingrediente.
type LineInput struct {
	Initial     decimal.Decimal
	Incoming    decimal.Decimal
	Consumption decimal.Decimal
	Actual      decimal.Decimal
}

// Line es el resultado conciliado de un ingrediente, listo para persistir como RevisionReport.
type Line struct {
	Expected   decimal.Decimal
	Actual     decimal.Decimal
	Difference decimal.Decimal
	Percentage decimal.Decimal
	Status     entity.ReportStatus
	Issues     []Issue
}

// ComputeLine aplica esperado = inicial + entradas − consumo, diferencia = real − esperado,
// % de desviación y clasificación. Cada cantidad se normaliza (3 decimales, saturación) antes de
// usarse; los esperados negativos se conservan y se reportan como Issue.
func ComputeLine(in LineInput) Line {
	var l Line
	norm := func(field string, q decimal.Decimal) decimal.Decimal {
		n, clamped := NormalizeQuantity(q)
		if clamped {
			l.Issues = append(l.Issues, Issue{Field: field, Reason: ReasonSaturated, Value: q})
		}
		return n
	}

	initial := norm("initial", in.Initial)
	incoming := norm("incoming", in.Incoming)
	consumption := norm("consumption", in.Consumption)

	l.Expected = norm("expected", initial.Add(incoming).Sub(consumption))
	if l.Expected.IsNegative() {
		l.Issues = append(l.Issues, Issue{Field: "expected", Reason: ReasonNegativeExpected, Value: l.Expected})
	}
	l.Actual = norm("actual", in.Actual)
	l.Difference = norm("difference", l.Actual.Sub(l.Expected))

	pct, clamped := Deviation(l.Expected, l.Actual, l.Difference)
	if clamped {
		l.Issues = append(l.Issues, Issue{Field: "percentage", Reason: ReasonSaturated, Value: pct})
	}
	l.Percentage = pct
	l.Status = Classify(pct)
	return l
}

// Consumption explota las ventas por receta: Σ receta.Quantity × unidades vendidas del producto.
// Los productos sin ventas no aportan; las aristas con cantidad no positiva se omiten.
func Consumption(recipes []*entity.RecipeItem, sold map[string]int64) (decimal.Decimal, []Issue) {
	total := decimal.Zero
	var issues []Issue
	for _, r := range recipes {
		units, ok := sold[r.ProductID]
		if !ok || units == 0 {
			continue
		}
		if !r.Quantity.IsPositive() {
			issues = append(issues, Issue{Field: "recipe:" + r.ProductID, Reason: ReasonNonPositiveRecipe, Value: r.Quantity})
			continue
		}
		total = total.Add(r.Quantity.Mul(decimal.NewFromInt(units)))
	}
	return total, issues
}
