package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

// CarryForward proyecta el conteo conciliado de una revisión completed sobre IngredientInventory:
// para cada report, inventario(ingrediente, sede) = report.Actual. Es idempotente y debe ejecutarse
// en la misma transacción que deja la revisión en completed.
func CarryForward(ctx context.Context, repos repository.Repositories, rev *entity.Revision) (int, error) {
	reports, err := repos.Reports.ListByRevision(ctx, rev.ID, "")
	if err != nil {
		return 0, fmt.Errorf("carry-forward: listar reports: %w", err)
	}
	for _, r := range reports {
		inv := &entity.IngredientInventory{
			IngredientID: r.IngredientID,
			LocationID:   rev.LocationID,
			Quantity:     r.ActualQuantity,
		}
		if err := repos.Inventory.Upsert(ctx, inv); err != nil {
			return 0, fmt.Errorf("carry-forward: ingrediente %s: %w", r.IngredientID, err)
		}
	}
	return len(reports), nil
}
