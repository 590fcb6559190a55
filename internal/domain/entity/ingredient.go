package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida de ingredientes.
const (
	UnitGram     = "g"
	UnitKilogram = "kg"
	UnitLiter    = "l"
	UnitPiece    = "pcs"
)

// ValidUnit indica si u es una unidad de medida soportada.
func ValidUnit(u string) bool {
	switch u {
	case UnitGram, UnitKilogram, UnitLiter, UnitPiece:
		return true
	}
	return false
}

// Ingredient representa una materia prima del catálogo de una Production.
type Ingredient struct {
	ID           string
	ProductionID string
	Name         string
	Unit         string // g, kg, l, pcs
	CreatedAt    time.Time
}

// Product representa un producto terminado que se vende en las sedes.
type Product struct {
	ID           string
	ProductionID string
	Name         string
	Description  string
	CreatedAt    time.Time
}

// RecipeItem es la arista Producto→Ingrediente: cuánto ingrediente consume una unidad de producto.
// Único por (ProductID, IngredientID); ambos extremos del mismo tenant.
type RecipeItem struct {
	ID           string
	ProductID    string
	IngredientID string
	Quantity     decimal.Decimal // por unidad, > 0, 3 decimales
	CreatedAt    time.Time
}
