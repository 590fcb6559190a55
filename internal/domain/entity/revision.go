package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevisionStatus es el estado del ciclo de vida de una revisión.
type RevisionStatus string

// Estados de revisión.
const (
	RevisionDraft      RevisionStatus = "draft"
	RevisionSubmitted  RevisionStatus = "submitted"
	RevisionProcessing RevisionStatus = "processing"
	RevisionCompleted  RevisionStatus = "completed"
)

// ReportStatus es la clasificación de la desviación de un ingrediente.
type ReportStatus string

// Clasificaciones de RevisionReport.
const (
	ReportOK       ReportStatus = "ok"       // 0-3%
	ReportWarning  ReportStatus = "warning"  // 3-10%
	ReportCritical ReportStatus = "critical" // >10%
)

// Revision es un conteo físico de inventario de una sede en una fecha.
// Única por (LocationID, RevisionDate).
type Revision struct {
	ID           string
	LocationID   string
	AuthorID     string
	RevisionDate time.Time
	Status       RevisionStatus
	Comments     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RevisionProductItem es la cantidad contada de un producto (piezas) en una revisión.
type RevisionProductItem struct {
	ID             string
	RevisionID     string
	ProductID      string
	ActualQuantity int64
	Comments       string
	CreatedAt      time.Time
}

// RevisionIngredientItem es la cantidad contada de un ingrediente en una revisión (3 decimales).
type RevisionIngredientItem struct {
	ID             string
	RevisionID     string
	IngredientID   string
	ActualQuantity decimal.Decimal
	Comments       string
	CreatedAt      time.Time
}

// RevisionReport es el resultado de la conciliación de un ingrediente en una revisión.
// Único por (RevisionID, IngredientID).
type RevisionReport struct {
	ID               string
	RevisionID       string
	IngredientID     string
	ExpectedQuantity decimal.Decimal
	ActualQuantity   decimal.Decimal
	Difference       decimal.Decimal // actual - expected; negativo = faltante
	Percentage       decimal.Decimal // 2 decimales
	Status           ReportStatus
	CreatedAt        time.Time
}
