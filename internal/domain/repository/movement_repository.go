package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// SalesTotal es la suma de ventas de un producto en un periodo. Total no es válido cuando el SUM es NULL.
type SalesTotal struct {
	ProductID string
	Total     decimal.NullDecimal
}

// IncomingTotal es la suma de entradas de un ingrediente en un periodo.
type IncomingTotal struct {
	IngredientID string
	Total        decimal.NullDecimal
}

// SalesRepository define el puerto de lectura/escritura de ventas por producto y sede.
type SalesRepository interface {
	Create(ctx context.Context, s *entity.Sales) error
	// SumByProduct agrega las ventas de la sede con fecha en [from, to] (inclusive).
	SumByProduct(ctx context.Context, locationID string, from, to time.Time) ([]SalesTotal, error)
}

// IncomingRepository define el puerto de lectura/escritura de entradas de ingredientes.
type IncomingRepository interface {
	Create(ctx context.Context, in *entity.Incoming) error
	// SumByIngredient agrega las entradas de la sede con fecha en [from, to] (inclusive).
	SumByIngredient(ctx context.Context, locationID string, from, to time.Time) ([]IncomingTotal, error)
}

// IngredientInventoryRepository define el puerto de la proyección de inventario actual por sede.
type IngredientInventoryRepository interface {
	Get(ctx context.Context, ingredientID, locationID string) (*entity.IngredientInventory, error)
	ListByLocation(ctx context.Context, locationID string) ([]*entity.IngredientInventory, error)
	// Upsert crea o sobreescribe la cantidad de (ingrediente, sede) y refresca UpdatedAt.
	Upsert(ctx context.Context, inv *entity.IngredientInventory) error
}
