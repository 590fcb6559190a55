package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de revisión en la API (sin hora).
const DateLayout = "2006-01-02"

// CreateRevisionRequest body para POST /api/revisions.
type CreateRevisionRequest struct {
	LocationID   string `json:"location_id" validate:"required"`
	RevisionDate string `json:"revision_date" validate:"required,datetime=2006-01-02"`
	Comments     string `json:"comments" validate:"max=2000"`
}

// RejectRevisionRequest body para POST /api/revisions/:id/reject.
type RejectRevisionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// IngredientCountRequest línea de conteo de un ingrediente.
type IngredientCountRequest struct {
	IngredientID   string          `json:"ingredient_id" validate:"required"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Comments       string          `json:"comments" validate:"max=500"`
}

// ProductCountRequest línea de conteo de un producto (piezas).
type ProductCountRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	ActualQuantity int64  `json:"actual_quantity" validate:"min=0"`
	Comments       string `json:"comments" validate:"max=500"`
}

// UpsertItemsRequest body para PUT /api/revisions/:id/items.
type UpsertItemsRequest struct {
	Ingredients []IngredientCountRequest `json:"ingredients" validate:"dive"`
	Products    []ProductCountRequest    `json:"products" validate:"dive"`
}

// ListRevisionsQuery filtros de GET /api/revisions.
type ListRevisionsQuery struct {
	Status       string `query:"status" validate:"omitempty,oneof=draft submitted processing completed"`
	LocationID   string `query:"location_id"`
	RevisionDate string `query:"revision_date" validate:"omitempty,datetime=2006-01-02"`
	Limit        int    `query:"limit" validate:"min=0,max=100"`
	Offset       int    `query:"offset" validate:"min=0"`
}

// RevisionResponse revisión expuesta por la API.
type RevisionResponse struct {
	ID           string    `json:"id"`
	LocationID   string    `json:"location_id"`
	AuthorID     string    `json:"author_id"`
	RevisionDate string    `json:"revision_date"`
	Status       string    `json:"status"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IngredientItemResponse línea de conteo de ingrediente.
type IngredientItemResponse struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Comments       string          `json:"comments"`
}

// ProductItemResponse línea de conteo de producto.
type ProductItemResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ActualQuantity int64  `json:"actual_quantity"`
	Comments       string `json:"comments"`
}

// ReportResponse resultado de conciliación de un ingrediente.
type ReportResponse struct {
	IngredientID     string          `json:"ingredient_id"`
	IngredientName   string          `json:"ingredient_name"`
	Unit             string          `json:"unit"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	ActualQuantity   decimal.Decimal `json:"actual_quantity"`
	Difference       decimal.Decimal `json:"difference"`
	Percentage       decimal.Decimal `json:"percentage"`
	Status           string          `json:"status"`
}

// RevisionDetailResponse revisión con sus líneas y reports.
type RevisionDetailResponse struct {
	Revision        RevisionResponse         `json:"revision"`
	IngredientItems []IngredientItemResponse `json:"ingredient_items"`
	ProductItems    []ProductItemResponse    `json:"product_items"`
	Reports         []ReportResponse         `json:"reports"`
}

// SummaryResponse resumen de los reports de una revisión.
type SummaryResponse struct {
	RevisionID      string          `json:"revision_id"`
	Total           int             `json:"total"`
	OK              int             `json:"ok"`
	Warning         int             `json:"warning"`
	Critical        int             `json:"critical"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	AvgPercentage   decimal.Decimal `json:"avg_percentage"`
}

// CalculationResponse respuesta de calculate/approve.
type CalculationResponse struct {
	Status         string           `json:"status"`
	Message        string           `json:"message"`
	ReportsWritten int              `json:"reports_written"`
	Warnings       int              `json:"warnings"`
	Revision       RevisionResponse `json:"revision"`
}

// ImportResultResponse resultado de importar un .xlsx de conteo.
type ImportResultResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}
