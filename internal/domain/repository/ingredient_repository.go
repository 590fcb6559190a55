package repository

import (
	"context"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// IngredientRepository define el puerto de persistencia para Ingredient.
type IngredientRepository interface {
	Create(ctx context.Context, i *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	// ListByProduction devuelve el catálogo del tenant ordenado por nombre.
	ListByProduction(ctx context.Context, productionID string) ([]*entity.Ingredient, error)
}

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByProduction(ctx context.Context, productionID string) ([]*entity.Product, error)
}

// RecipeRepository define el puerto de persistencia para las aristas producto→ingrediente.
type RecipeRepository interface {
	// Upsert crea o reemplaza la cantidad del par (producto, ingrediente).
	Upsert(ctx context.Context, r *entity.RecipeItem) error
	// ListByProduction devuelve todas las aristas de los productos del tenant.
	ListByProduction(ctx context.Context, productionID string) ([]*entity.RecipeItem, error)
}
