package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterIncomingRequest body para POST /api/inventory/incoming.
type RegisterIncomingRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	LocationID   string          `json:"location_id" validate:"required"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity     decimal.Decimal `json:"quantity"`
	Comment      string          `json:"comment" validate:"max=500"`
}

// RegisterSaleRequest body para POST /api/inventory/sales.
type RegisterSaleRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity   int64  `json:"quantity" validate:"min=0"`
	ExternalID string `json:"external_id" validate:"max=100"`
}

// InventoryLineDTO cantidad actual de un ingrediente en una sede (proyección tras el último approve).
type InventoryLineDTO struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// LocationInventoryResponse inventario actual de una sede.
type LocationInventoryResponse struct {
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name"`
	Items        []InventoryLineDTO `json:"items"`
}
