package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sales es un hecho de venta: unidades vendidas de un producto en una sede y fecha.
type Sales struct {
	ID         string
	ProductID  string
	LocationID string
	Date       time.Time
	ExternalID string // ID de la caja, opcional
	Quantity   int64  // >= 0
	CreatedAt  time.Time
}

// Incoming es una recepción de ingrediente en una sede.
type Incoming struct {
	ID           string
	IngredientID string
	LocationID   string
	Date         time.Time
	Quantity     decimal.Decimal // 3 decimales
	Comment      string
	CreatedAt    time.Time
}

// IngredientInventory es la proyección del stock actual de un ingrediente en una sede.
// Se sobrescribe completa (upsert) desde el carry-forward; no es un ledger.
type IngredientInventory struct {
	IngredientID string
	LocationID   string
	Quantity     decimal.Decimal
	UpdatedAt    time.Time
}
