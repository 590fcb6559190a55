// Package revision contiene las reglas puras de la revisión de inventario: aritmética de punto fijo,
// clasificación de desviaciones, periodo de conciliación y transiciones de estado.
// No depende de persistencia ni de transporte.
package revision

import "github.com/shopspring/decimal"

// Límites de las columnas NUMERIC(10,3) y NUMERIC(5,2).
var (
	QuantityMax   = decimal.RequireFromString("9999999.999")
	PercentageMax = decimal.RequireFromString("999.99")

	quantityLimit   = decimal.NewFromInt(10_000_000)
	percentageLimit = decimal.NewFromInt(1000)
	zeroTolerance   = decimal.RequireFromString("0.001")
	hundred         = decimal.NewFromInt(100)
)

// NormalizeQuantity redondea a 3 decimales (mitad hacia arriba, alejándose de cero) y satura a
// ±9999999.999. El segundo valor indica si hubo saturación.
func NormalizeQuantity(q decimal.Decimal) (decimal.Decimal, bool) {
	q = q.Round(3)
	if q.Abs().GreaterThanOrEqual(quantityLimit) {
		if q.IsNegative() {
			return QuantityMax.Neg(), true
		}
		return QuantityMax, true
	}
	return q, false
}

// NearZero indica si |q| < 0.001.
func NearZero(q decimal.Decimal) bool {
	return q.Abs().LessThan(zeroTolerance)
}

// Deviation calcula el % absoluto de desviación de actual respecto de expected.
//
// Con expected ≈ 0 no hay base de comparación: devuelve 0 si actual también es ≈ 0 y exactamente 100
// en otro caso. Si no, |difference| / |expected| × 100 redondeado a 2 decimales y saturado a 999.99.
func Deviation(expected, actual, difference decimal.Decimal) (decimal.Decimal, bool) {
	if NearZero(expected) {
		if NearZero(actual) {
			return decimal.Zero, false
		}
		return hundred, false
	}
	pct := difference.Abs().Mul(hundred).DivRound(expected.Abs(), 2)
	if pct.GreaterThanOrEqual(percentageLimit) {
		return PercentageMax, true
	}
	return pct, false
}
