package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var _ repository.IngredientInventoryRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de IngredientInventoryRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

func (r *InventoryLevelRepo) Get(ctx context.Context, ingredientID, locationID string) (*entity.IngredientInventory, error) {
	query := `
		SELECT ingredient_id, location_id, quantity, updated_at
		FROM ingredient_inventory
		WHERE ingredient_id = $1 AND location_id = $2`
	var l entity.IngredientInventory
	err := r.q.QueryRow(ctx, query, ingredientID, locationID).Scan(&l.IngredientID, &l.LocationID, &l.Quantity, &l.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory level: %w", err)
	}
	return &l, nil
}

func (r *InventoryLevelRepo) Upsert(ctx context.Context, level *entity.IngredientInventory) error {
	query := `
		INSERT INTO ingredient_inventory (ingredient_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (ingredient_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, level.IngredientID, level.LocationID, level.Quantity).Scan(&level.UpdatedAt)
	if err != nil {
		return writeErr("upsert inventory level", err)
	}
	return nil
}

func (r *InventoryLevelRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.IngredientInventory, error) {
	query := `
		SELECT ingredient_id, location_id, quantity, updated_at
		FROM ingredient_inventory
		WHERE location_id = $1
		ORDER BY ingredient_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.IngredientInventory
	for rows.Next() {
		var l entity.IngredientInventory
		if err := rows.Scan(&l.IngredientID, &l.LocationID, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
