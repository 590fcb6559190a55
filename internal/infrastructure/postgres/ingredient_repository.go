package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var (
	_ repository.IngredientRepository = (*IngredientRepo)(nil)
	_ repository.ProductRepository    = (*ProductRepo)(nil)
	_ repository.RecipeRepository     = (*RecipeRepo)(nil)
)

// ── Ingredientes ──────────────────────────────────────────────────────────────

// IngredientRepo implementación del puerto IngredientRepository sobre PostgreSQL.
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

// Create persiste un ingrediente. ErrDuplicate si el nombre ya existe en el tenant.
func (r *IngredientRepo) Create(ctx context.Context, i *entity.Ingredient) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	i.CreatedAt = time.Now()
	query := `
		INSERT INTO ingredients (id, production_id, name, unit, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, i.ID, i.ProductionID, i.Name, i.Unit, i.CreatedAt); err != nil {
		return writeErr("insert ingredient", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por ID.
func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	query := `SELECT id, production_id, name, unit, created_at FROM ingredients WHERE id = $1`
	var i entity.Ingredient
	err := r.q.QueryRow(ctx, query, id).Scan(&i.ID, &i.ProductionID, &i.Name, &i.Unit, &i.CreatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &i, nil
}

// ListByProduction devuelve el catálogo de ingredientes del tenant por nombre.
func (r *IngredientRepo) ListByProduction(ctx context.Context, productionID string) ([]*entity.Ingredient, error) {
	query := `
		SELECT id, production_id, name, unit, created_at
		FROM ingredients WHERE production_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, productionID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		var i entity.Ingredient
		if err := rows.Scan(&i.ID, &i.ProductionID, &i.Name, &i.Unit, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	query := `
		INSERT INTO products (id, production_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.ProductionID, p.Name, p.Description, p.CreatedAt); err != nil {
		return writeErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT id, production_id, name, description, created_at FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.ProductionID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListByProduction lista los productos del tenant por nombre.
func (r *ProductRepo) ListByProduction(ctx context.Context, productionID string) ([]*entity.Product, error) {
	query := `
		SELECT id, production_id, name, description, created_at
		FROM products WHERE production_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, productionID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.ProductionID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ── Recetas ───────────────────────────────────────────────────────────────────

// RecipeRepo implementación del puerto RecipeRepository sobre PostgreSQL.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Upsert crea o reemplaza la arista. Producto e ingrediente deben ser del mismo tenant: el INSERT
// sólo produce fila si el JOIN entre ambos coincide en production_id.
func (r *RecipeRepo) Upsert(ctx context.Context, rec *entity.RecipeItem) error {
	if !rec.Quantity.IsPositive() {
		return fmt.Errorf("cantidad de receta %s: %w", rec.Quantity, domain.ErrInvalidInput)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO recipe_items (id, product_id, ingredient_id, quantity, created_at)
		SELECT $1, p.id, i.id, $4, now()
		FROM products p
		JOIN ingredients i ON i.production_id = p.production_id
		WHERE p.id = $2 AND i.id = $3
		ON CONFLICT (product_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity`
	tag, err := r.q.Exec(ctx, query, rec.ID, rec.ProductID, rec.IngredientID, rec.Quantity.Round(3))
	if err != nil {
		return writeErr("upsert recipe item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s / ingrediente %s: %w", rec.ProductID, rec.IngredientID, domain.ErrNotFound)
	}
	return nil
}

// ListByProduction devuelve las aristas de los productos del tenant.
func (r *RecipeRepo) ListByProduction(ctx context.Context, productionID string) ([]*entity.RecipeItem, error) {
	query := `
		SELECT ri.id, ri.product_id, ri.ingredient_id, ri.quantity, ri.created_at
		FROM recipe_items ri
		JOIN products p ON p.id = ri.product_id
		WHERE p.production_id = $1
		ORDER BY ri.ingredient_id, ri.product_id`
	rows, err := r.q.Query(ctx, query, productionID)
	if err != nil {
		return nil, fmt.Errorf("list recipe items: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecipeItem
	for rows.Next() {
		var ri entity.RecipeItem
		if err := rows.Scan(&ri.ID, &ri.ProductID, &ri.IngredientID, &ri.Quantity, &ri.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe item: %w", err)
		}
		list = append(list, &ri)
	}
	return list, rows.Err()
}
